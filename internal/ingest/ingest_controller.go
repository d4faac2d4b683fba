package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"tips-content-service/internal/api"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/lint"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
	"tips-content-service/internal/source"

	"github.com/gin-gonic/gin"
)

// Api defines the set of endpoints related to synchronizing the markdown corpus into the database.
//
// @Summary API contract for markdown corpus ingestion
type Api interface {
	// SyncDocuments imports markdown documents from the configured content source into the database.
	SyncDocuments(c *gin.Context)
}

// Controller handles the ingestion of markdown documents from the configured content source.
// It coordinates between the ContentSource, DocumentParser, Linter, Repository and cleanup
// logic to keep the stored corpus fresh.
type Controller struct {
	*environment.Env
	source.ContentSource
	DocumentHousekeeper
	DocumentParser
	lint.Linter
}

// ensure Controller implements Api
var _ Api = &Controller{}

type ModelType string

const (
	DocumentMeta    ModelType = "document meta"
	DocumentContent ModelType = "document content"
)

// SyncDocuments reads the corpus from the configured content source, parses the front
// matter of every document, lints the batch and stores the result, deleting entries
// whose permalink vanished from the source.
// Documents that cannot be read or parsed are logged and skipped. Lint findings are
// logged but never block the sync; the source is authoritative.
//
// @ID syncDocuments
// @Summary Sync markdown documents from the content source into the database
// @Tags ingest
// @Router /content/sync [get]
// @Success 204
// @Failure 500
func (ic *Controller) SyncDocuments(c *gin.Context) {
	var ctx context.Context
	if c.Request == nil || c.Request.Context() == nil {
		ctx = context.Background()
	} else {
		ctx = c.Request.Context()
	}

	start := time.Now()

	filePaths, err := ic.ReadDocumentPaths()
	if err != nil {
		ic.LogError(logging.GetLogTypeSync(), err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error reading document paths: %s", err.Error()))
		return
	}

	var documentMetasFromSource []models.DocumentMeta
	var documentContentsFromSource []models.DocumentContent

	for _, filePath := range filePaths {
		if !source.IsMarkdownFile(filePath) {
			ic.LogWarnf(logging.GetLogTypeSync(), "file extension is not markdown: %s", filePath)
			continue
		}

		fileContent, err := ic.ReadDocumentContent(filePath)
		if err != nil {
			ic.LogError(logging.GetLogTypeSync(), err.Error())
			continue
		}

		document, err := ic.ParseDocument(filePath, fileContent)
		if err != nil {
			ic.LogError(logging.GetLogTypeSync(), err.Error())
			continue
		}

		documentMetasFromSource = append(documentMetasFromSource, document.Meta)
		documentContentsFromSource = append(documentContentsFromSource, document)
	}

	ic.lintAdvisory(documentContentsFromSource)

	documentMetasFromSource, documentContentsFromSource = ic.dedupeByPermalink(documentMetasFromSource, documentContentsFromSource)

	var documentMetasFromDb []models.DocumentMeta

	err = ic.FindAllDocumentMetas(ctx, &documentMetasFromDb)
	if err != nil {
		ic.LogError(logging.GetLogTypeSync(), err.Error())
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error fetching existing document meta data from the database: %s", err.Error()))
		return
	}

	if len(documentMetasFromDb) > 0 {
		err := ic.DeleteObsoleteDocumentsFromDatabase(ctx, documentMetasFromSource, documentMetasFromDb)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(err.Error()))
			return
		}
	}

	if len(documentMetasFromSource) > 0 {
		err = ic.UpsertDocumentMetas(ctx, documentMetasFromSource)
		if err != nil {
			ic.LogError(logging.GetLogTypeSync(), err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error writing document meta data into the database: %s", err.Error()))
			return
		}
	}

	// links meta and content
	for i := 0; i < len(documentMetasFromSource); i++ {
		documentContentsFromSource[i].Meta = documentMetasFromSource[i]
	}

	if len(documentContentsFromSource) > 0 {
		err = ic.UpsertDocumentContents(ctx, documentContentsFromSource)
		if err != nil {
			ic.LogError(logging.GetLogTypeSync(), err.Error())
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error writing document contents into the database: %s", err.Error()))
			return
		}
	}

	ic.LogInfof(logging.GetLogTypeSync(), "synced %d documents in %dms", len(documentContentsFromSource), time.Since(start).Milliseconds())

	c.JSON(http.StatusNoContent, "")
}

// dedupeByPermalink collapses documents sharing a permalink; the last occurrence wins.
// The batched upserts must touch every row at most once, otherwise postgres rejects
// the whole ON CONFLICT DO UPDATE statement. Shadowed documents are dropped together
// with their contents, keeping both slices parallel.
func (ic *Controller) dedupeByPermalink(
	metas []models.DocumentMeta,
	contents []models.DocumentContent,
) ([]models.DocumentMeta, []models.DocumentContent) {
	indexByPermalink := make(map[string]int, len(metas))

	dedupedMetas := make([]models.DocumentMeta, 0, len(metas))
	dedupedContents := make([]models.DocumentContent, 0, len(contents))

	for i, meta := range metas {
		j, ok := indexByPermalink[meta.Permalink]
		if ok {
			ic.LogWarnf(logging.GetLogTypeSync(), "duplicate permalink %s: %s shadows %s", meta.Permalink, meta.SourcePath, dedupedMetas[j].SourcePath)
			dedupedMetas[j] = meta
			dedupedContents[j] = contents[i]
			continue
		}

		indexByPermalink[meta.Permalink] = len(dedupedMetas)
		dedupedMetas = append(dedupedMetas, meta)
		dedupedContents = append(dedupedContents, contents[i])
	}

	return dedupedMetas, dedupedContents
}

// lintAdvisory runs the lint rules over the parsed batch and logs the findings.
func (ic *Controller) lintAdvisory(documents []models.DocumentContent) {
	lintDocuments := make([]lint.Document, 0, len(documents))
	for _, v := range documents {
		lintDocuments = append(lintDocuments, lint.Document{Meta: v.Meta, Body: v.Body})
	}

	report := ic.LintDocuments(lintDocuments)

	for _, finding := range report.Findings {
		msg := fmt.Sprintf("%s: %s (%s)", finding.Rule, finding.Message, finding.SourcePath)

		if finding.Severity == lint.SeverityError {
			ic.LogError(logging.GetLogTypeLint(), msg)
		} else {
			ic.LogWarn(logging.GetLogTypeLint(), msg)
		}
	}
}
