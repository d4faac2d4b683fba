package source

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"tips-content-service/internal/config"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"

	bitbucketv1 "github.com/gfleury/go-bitbucket-v1"
)

// bitbucketPageLimit is the page size used when streaming the repository file structure.
const bitbucketPageLimit = 150

// Result represents a wrapper for paginated file paths retrieved from the Bitbucket API.
//
// This struct contains a slice of generic values representing file path entries
// and any error encountered during retrieval.
type Result struct {
	AnyFilePaths []any
	Error        error
}

// BitbucketApiServiceAdapter wraps an abstraction layer around the Bitbucket APIs
// that are used within the application for retrieving repository content and file streams.
//
// @Summary Interface for Bitbucket API data access
type BitbucketApiServiceAdapter interface {
	GetContent(projectKey string, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
	GetRawContent(projectKey, repositorySlug, path string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
	StreamFiles(projectKey, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error)
}

// BitbucketApiClient is a concrete implementation of BitbucketApiServiceAdapter.
//
// It uses an embedded *bitbucketv1.APIClient to proxy requests and invert dependencies from the
// domain logic to the underlying API implementation.
//
// Based on the Dependency Inversion Principle [DIP].
//
// [DIP]: https://en.wikipedia.org/wiki/Dependency_inversion_principle
type BitbucketApiClient struct {
	*bitbucketv1.APIClient
}

func (a *BitbucketApiClient) GetContent(projectKey string, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.GetContent(projectKey, repositorySlug, localVarOptionals)
}

func (a *BitbucketApiClient) GetRawContent(projectKey, repositorySlug, path string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.GetRawContent(projectKey, repositorySlug, path, localVarOptionals)
}

func (a *BitbucketApiClient) StreamFiles(projectKey, repositorySlug string, localVarOptionals map[string]any) (*bitbucketv1.APIResponse, error) {
	return a.DefaultApi.StreamFiles(projectKey, repositorySlug, localVarOptionals)
}

// BitbucketSource reads the markdown corpus from a remote Bitbucket repository.
//
// It supports recursive structure reading and raw content extraction via an adapter.
// Only files below RootPath are considered part of the corpus; returned paths are
// relative to that folder.
type BitbucketSource struct {
	*environment.Env
	Adapter BitbucketApiServiceAdapter

	ProjectName    string
	RepositoryName string
	RootPath       string
}

// ensure BitbucketSource implements ContentSource
var _ ContentSource = &BitbucketSource{}

// rootPrefix normalizes RootPath into a path prefix, or "" when the whole repository is the corpus.
func (bbs *BitbucketSource) rootPrefix() string {
	root := strings.Trim(bbs.RootPath, "/")
	if len(root) == 0 {
		return ""
	}

	return root + "/"
}

// ReadRepoRootFolderContent fetches the content of the remote Bitbucket repository's root folder.
//
// Returns a slice of top-level file/folder names or an error if extraction fails.
func (bbs *BitbucketSource) ReadRepoRootFolderContent() ([]string, error) {
	if bbs.Adapter == nil {
		return nil, fmt.Errorf("bitbucket API not initialized")
	}

	bitbucketResponse, err := bbs.Adapter.GetContent(bbs.ProjectName, bbs.RepositoryName, nil)
	if err != nil {
		return nil, fmt.Errorf("error reading file structure from Bitbucket: %w", err)
	}

	if bitbucketResponse == nil {
		return nil, fmt.Errorf("bitbucket API response is nil")
	}

	if bitbucketResponse.Values == nil {
		return nil, fmt.Errorf("bitbucket API response has no values")
	}

	children, ok := bitbucketResponse.Values["children"]
	if !ok {
		return nil, fmt.Errorf("bitbucket API response does not contain children (i.e. files or folders)")
	}

	if children == nil {
		return []string{}, nil
	}

	anyChildren, ok := children.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("type conversion to map; received type: %T", children)
	}

	anyValues, ok := anyChildren["values"].([]any)
	if !ok {
		return nil, fmt.Errorf("type conversion to slice of type any failed; received type: %T", children)
	}

	var rootFolderChildren []string
	for _, v := range anyValues {
		vm, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("type conversion to map failed; received type: %T", v)
		}

		p, ok := vm["path"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("type conversion to map failed; received type: %T", v)
		}

		n, ok := p["name"].(string)
		if !ok {
			return nil, fmt.Errorf("type conversion to string failed; received type: %T", v)
		}

		rootFolderChildren = append(rootFolderChildren, n)
	}

	return rootFolderChildren, nil
}

// ReadDocumentContent retrieves the raw contents of the document at the given path.
//
// The path is relative to RootPath, matching the paths ReadDocumentPaths returns.
func (bbs *BitbucketSource) ReadDocumentContent(path string) (string, error) {
	if bbs.Adapter == nil {
		return "", fmt.Errorf("bitbucket API not initialized")
	}

	bitbucketResponse, err := bbs.Adapter.GetRawContent(bbs.ProjectName, bbs.RepositoryName, bbs.rootPrefix()+path, nil)
	if err != nil {
		return "", err
	}

	if bitbucketResponse == nil {
		return "", fmt.Errorf("bitbucket API response is nil")
	}

	return string(bitbucketResponse.Payload), nil
}

// ReadDocumentPaths recursively traverses the Bitbucket repository,
// collecting the paths of all markdown files located below RootPath.
//
// The file structure is streamed page by page. Returns a list of file paths
// relative to RootPath, or an error.
func (bbs *BitbucketSource) ReadDocumentPaths() ([]string, error) {
	if bbs.Adapter == nil {
		return nil, fmt.Errorf("bitbucket API not initialized")
	}

	m := make(map[string]any)
	m["start"] = 0
	m["limit"] = bitbucketPageLimit

	read := func() <-chan Result {
		outStream := make(chan Result)

		go func() {
			defer close(outStream)

			var reachedLastPage bool

			for !reachedLastPage {
				s := time.Now()
				bbs.LogInfo(logging.GetLogTypeSync(), "start fetching file structure")
				bitbucketResponse, err := bbs.Adapter.StreamFiles(bbs.ProjectName, bbs.RepositoryName, m)
				e := time.Now()
				bbs.LogInfo(logging.GetLogTypeSync(), fmt.Sprintf("fetched file structure in %v", e.Sub(s)))

				if err != nil {
					outStream <- Result{AnyFilePaths: nil, Error: fmt.Errorf("error reading file structure from Bitbucket: %w", err)}
					return
				}

				if bitbucketResponse == nil || bitbucketResponse.Values == nil {
					outStream <- Result{AnyFilePaths: nil, Error: fmt.Errorf("bitbucket API response is nil or has no paged values")}
					return
				}

				values, ok := bitbucketResponse.Values["values"]
				if !ok {
					outStream <- Result{AnyFilePaths: nil, Error: fmt.Errorf("bitbucket API response does not contain the property 'values'")}
					return
				}

				if values == nil {
					outStream <- Result{AnyFilePaths: []any{}, Error: nil}
					reachedLastPage = true
					continue
				}

				anyFilePaths, ok := values.([]any)
				if !ok {
					outStream <- Result{AnyFilePaths: nil, Error: fmt.Errorf("type conversion to slice of type any failed; received type: %T", values)}
					reachedLastPage = true
					continue
				}

				outStream <- Result{AnyFilePaths: anyFilePaths, Error: nil}

				isLastPage, lastPageOk := bitbucketResponse.Values["isLastPage"].(bool)
				if !lastPageOk {
					bbs.LogWarn(logging.GetLogTypeSync(), "bitbucket API response does not contain property 'isLastPage'")
					break
				}

				if isLastPage {
					bbs.LogInfo(logging.GetLogTypeSync(), "reached last page")
					break
				}

				nextPageStart, nextPageOk := bitbucketResponse.Values["nextPageStart"].(float64)
				if !nextPageOk {
					bbs.LogWarn(logging.GetLogTypeSync(), "bitbucket API response does not contain property 'nextPageStart'")
					break
				}

				m["start"] = int(nextPageStart)
			}
		}()

		return outStream
	}

	consume := func(results <-chan Result) ([]string, error) {
		prefix := bbs.rootPrefix()

		var filePaths []string

		for result := range results {

			if result.Error != nil {
				return nil, result.Error
			}

			for _, v := range result.AnyFilePaths {
				fp, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("type conversion to slice of type string failed; received type: %T", v)
				}

				if len(prefix) > 0 && !strings.HasPrefix(fp, prefix) {
					continue
				}

				if !IsMarkdownFile(fp) {
					continue
				}

				filePaths = append(filePaths, strings.TrimPrefix(fp, prefix))
			}
		}

		return filePaths, nil
	}

	results := read()
	return consume(results)
}

// InitBitbucket initializes the Bitbucket API with the provided configuration and creates an instance of *BitbucketSource
func InitBitbucket(c *config.Configuration, env *environment.Env) (*BitbucketSource, error) {
	env.LogInfo(logging.GetLogTypeInitialization(), "initializing Bitbucket API")

	if c.BitBucket.Url == nil {
		return nil, fmt.Errorf("bitbucket url is not set")
	}

	bitbucketConfig := bitbucketv1.Configuration{
		BasePath:  c.BitBucket.Url.String(),
		Host:      c.BitBucket.Url.Host,
		Scheme:    c.BitBucket.Url.Scheme,
		UserAgent: "tips-content-service",
	}

	ctx := context.Background()

	if len(c.BitBucket.AccessToken) > 0 {
		ctx = context.WithValue(ctx, bitbucketv1.ContextAccessToken, c.BitBucket.AccessToken)

	} else if len(c.BitBucket.User) > 0 && len(c.BitBucket.Password) > 0 {
		ctx = context.WithValue(ctx, bitbucketv1.ContextBasicAuth, bitbucketv1.BasicAuth{
			UserName: c.BitBucket.User,
			Password: c.BitBucket.Password,
		})
	}

	bitbucketApi := bitbucketv1.NewAPIClient(ctx, &bitbucketConfig)

	_, err := bitbucketApi.DefaultApi.GetPullRequestCount()
	if err != nil {
		return nil, err
	}

	src := &BitbucketSource{
		Env:            env,
		Adapter:        &BitbucketApiClient{bitbucketApi},
		ProjectName:    c.BitBucket.ProjectName,
		RepositoryName: c.BitBucket.Repository,
		RootPath:       c.BitBucket.RootPath,
	}

	rootFolderChildren, err := src.ReadRepoRootFolderContent()
	if err != nil {
		env.LogWarnf(logging.GetLogTypeInitialization(), "could not verify repository root folder: %s", err.Error())
	} else if root := strings.Trim(src.RootPath, "/"); len(root) > 0 {
		topLevel := strings.Split(root, "/")[0]
		if !slices.Contains(rootFolderChildren, topLevel) {
			env.LogWarnf(logging.GetLogTypeInitialization(), "content root %s not found in repository root folder", src.RootPath)
		}
	}

	env.LogDebug(logging.GetLogTypeInitialization(), "Bitbucket API initialized")

	return src, nil
}
