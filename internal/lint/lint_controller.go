package lint

import (
	"github.com/gin-gonic/gin"
	"net/http"
	"tips-content-service/internal/api"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
)

// Api defines the HTTP endpoint exposing corpus lint reports.
type Api interface {
	GetLintReport(c *gin.Context)
}

// Controller serves lint reports over the stored document corpus.
type Controller struct {
	*environment.Env
	Linter
}

// GetLintReport runs every lint rule over the stored corpus and returns the report.
//
// @ID getLintReport
// @Summary Lint the stored document corpus
// @Tags lint
// @Router /content/lint [get]
// @Success 200 {object} lint.Report
// @Failure 500
func (lc *Controller) GetLintReport(c *gin.Context) {
	ctx := c.Request.Context()

	var documentContents []models.DocumentContent
	if err := lc.FindAllDocumentContents(ctx, &documentContents); err != nil {
		lc.LogError(logging.GetLogTypeLint(), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error reading documents: %s", err.Error()))
		return
	}

	documents := make([]Document, 0, len(documentContents))
	for _, v := range documentContents {
		documents = append(documents, Document{Meta: v.Meta, Body: v.Body})
	}

	report := lc.LintDocuments(documents)
	c.JSON(http.StatusOK, report)
}
