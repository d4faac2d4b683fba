package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/models"
	"tips-content-service/internal/utils"

	"github.com/adrg/frontmatter"
)

// documentFrontMatter mirrors the YAML keys the site generator understands.
// Unknown keys are ignored.
type documentFrontMatter struct {
	Title            string `yaml:"title"`
	Layout           string `yaml:"layout"`
	Sidenav          string `yaml:"sidenav"`
	Type             string `yaml:"type"`
	Category         string `yaml:"category"`
	Permalink        string `yaml:"permalink"`
	Order            any    `yaml:"order"`
	Published        *bool  `yaml:"published"`
	ExcerptSeparator string `yaml:"excerpt_separator"`
}

// revisionPattern matches in-body revision annotations such as
// "Updated 2017-09-18" and "Updated April 20, 2012".
var revisionPattern = regexp.MustCompile(`Updated\s+(\d{4}-\d{2}-\d{2}|[A-Z][a-z]+ \d{1,2}, \d{4})`)

// revisionLayouts are the date layouts a revision annotation may use.
var revisionLayouts = []string{"2006-01-02", "January 2, 2006", "Jan 2, 2006"}

// DocumentParser turns raw markdown files into storable documents.
//
// Front matter keys override the derived defaults: a missing permalink falls
// back to the source path, a missing title to the title-cased file name, and
// documents are published unless the front matter says otherwise.
type DocumentParser struct {
	*environment.Env
	DefaultExcerptSeparator string
}

// ParseDocument parses one raw markdown file into a document ready for storage.
//
// Param path body string true "Document path relative to the content root"
// Param raw body string true "Raw file content including front matter"
func (p *DocumentParser) ParseDocument(path, raw string) (models.DocumentContent, error) {
	var fm documentFrontMatter

	rest, err := frontmatter.Parse(strings.NewReader(raw), &fm)
	if err != nil {
		return models.DocumentContent{}, fmt.Errorf("error parsing front matter of %s: %w", path, err)
	}

	body := string(rest)

	meta := models.DocumentMeta{
		Permalink:        fm.Permalink,
		Title:            fm.Title,
		Layout:           fm.Layout,
		Sidenav:          fm.Sidenav,
		Type:             fm.Type,
		Category:         fm.Category,
		ExcerptSeparator: fm.ExcerptSeparator,
		SourcePath:       path,
		Published:        fm.Published == nil || *fm.Published,
		RevisedAt:        newestRevision(body),
		CharCount:        uint(len(strings.TrimSpace(body))),
	}

	if fm.Order != nil {
		meta.Order = fmt.Sprint(fm.Order)
	}

	if len(meta.Permalink) == 0 {
		meta.Permalink = permalinkFromPath(path)
	}
	if !strings.HasPrefix(meta.Permalink, "/") {
		meta.Permalink = "/" + meta.Permalink
	}

	if len(strings.TrimSpace(meta.Title)) == 0 {
		meta.Title = titleFromPath(path)
	}

	if len(meta.Type) == 0 {
		meta.Type = models.TypeMarkdown
	}

	return models.DocumentContent{
		Body:    body,
		Excerpt: p.excerpt(body, fm.ExcerptSeparator),
		Meta:    meta,
	}, nil
}

// excerpt returns the teaser above the excerpt separator, or "" when the
// separator never occurs in the body.
func (p *DocumentParser) excerpt(body, declaredSeparator string) string {
	separator := declaredSeparator
	if len(separator) == 0 {
		separator = p.DefaultExcerptSeparator
	}
	if len(separator) == 0 {
		return ""
	}

	trimmedBody := strings.TrimLeft(body, "\r\n")

	idx := strings.Index(trimmedBody, separator)
	if idx < 0 {
		return ""
	}

	return strings.TrimSpace(trimmedBody[:idx])
}

// newestRevision scans the body for revision annotations and returns the newest one.
func newestRevision(body string) *time.Time {
	var newest *time.Time

	for _, match := range revisionPattern.FindAllStringSubmatch(body, -1) {
		for _, layout := range revisionLayouts {
			revision, err := time.Parse(layout, match[1])
			if err != nil {
				continue
			}

			if newest == nil || revision.After(*newest) {
				newest = &revision
			}
			break
		}
	}

	return newest
}

// permalinkFromPath derives a permalink from the source path, e.g. "tips/1.md" becomes "/tips/1".
func permalinkFromPath(path string) string {
	permalink := strings.TrimSuffix(path, filepath.Ext(path))
	permalink = strings.ReplaceAll(permalink, " ", "_")

	return "/" + strings.TrimPrefix(permalink, "/")
}

// titleFromPath derives a human readable title from the file name,
// e.g. "new-features.md" becomes "New Features".
func titleFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return utils.TitleFromSlug(name)
}
