package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
)

// Source kinds selectable via the Content.Source config property.
const (
	Filesystem = "filesystem"
	Bitbucket  = "bitbucket"
)

// ContentSource abstracts where the markdown corpus is read from.
//
// Implementations list document paths relative to their content root and
// read the raw content of a single document.
//
// @Summary Interface for reading the markdown corpus from a content root
type ContentSource interface {

	// ReadDocumentPaths returns the paths of all markdown documents below the content root.
	//
	// Paths are relative to the root and use forward slashes.
	ReadDocumentPaths() ([]string, error)

	// ReadDocumentContent reads the raw content of the document at the given path.
	ReadDocumentContent(path string) (string, error)
}

// skippedDirNames are directories the site generator owns or that never carry documents.
var skippedDirNames = map[string]struct{}{
	"_site":        {},
	"_layouts":     {},
	"_includes":    {},
	"node_modules": {},
	"vendor":       {},
}

// FilesystemSource reads the markdown corpus from a local directory tree.
type FilesystemSource struct {
	*environment.Env
	Root string
}

// ensure FilesystemSource implements ContentSource
var _ ContentSource = &FilesystemSource{}

// ReadDocumentPaths walks the content root and collects all markdown files.
//
// Dot-prefixed directories and generator-owned directories are not descended into.
func (fsrc *FilesystemSource) ReadDocumentPaths() ([]string, error) {
	if len(fsrc.Root) == 0 {
		return nil, fmt.Errorf("content root is not set")
	}

	var filePaths []string

	err := filepath.WalkDir(fsrc.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == fsrc.Root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if _, ok := skippedDirNames[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}

		if !IsMarkdownFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(fsrc.Root, path)
		if err != nil {
			return err
		}

		filePaths = append(filePaths, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking content root %s: %w", fsrc.Root, err)
	}

	fsrc.LogDebugf(logging.GetLogTypeSync(), "collected %d markdown files below %s", len(filePaths), fsrc.Root)

	return filePaths, nil
}

// ReadDocumentContent reads one document below the content root.
func (fsrc *FilesystemSource) ReadDocumentContent(path string) (string, error) {
	b, err := os.ReadFile(filepath.Join(fsrc.Root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("error reading document %s: %w", path, err)
	}

	return string(b), nil
}

// IsMarkdownFile reports whether the path carries a markdown extension.
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}

	return false
}
