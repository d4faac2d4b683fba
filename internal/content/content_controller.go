package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"io"
	"net/http"
	"slices"
	"time"
	"tips-content-service/internal/api"
	"tips-content-service/internal/environment"
	"tips-content-service/internal/logging"
	"tips-content-service/internal/models"
)

// Api defines HTTP endpoints for accessing published documents and navigation metadata.
type Api interface {
	GetNavigationTrees(c *gin.Context)
	GetDocumentByPermalink(c *gin.Context)
	GetDocumentSearchTermMatches(c *gin.Context)
}

// Controller handles API operations related to document metadata and bodies.
//
// @Summary Document navigation and content controller
type Controller struct {
	*environment.Env
	NavigationTreeService
	DocumentSearchMatchMapper
}

type MatchesWithSimilarity struct {
	content    models.DocumentContent
	similarity float64
}

// GetNavigationTrees returns the navigation structure for all published documents.
//
// An optional sidenav query parameter restricts the structure to documents
// assigned to that side navigation.
//
// @ID getNavigationTrees
// @Summary Get navigation item trees for published documents
// @Tags navigation
// @Router /content/navigation-items [get]
// @Param sidenav query string false "Only include documents of this side navigation"
// @Success	200	{object} api.RestJsonResponse{data=[]content.NavigationItem}
// @Failure 500
func (cc *Controller) GetNavigationTrees(c *gin.Context) {
	ctx := c.Request.Context()

	var documentMetas []models.DocumentMeta
	if err := cc.FindPublishedDocumentMetas(ctx, &documentMetas); err != nil {
		cc.LogError(logging.GetLogType("content"), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error reading document meta info: %s", err.Error()))
		return
	}

	sidenav := c.Query("sidenav")
	if len(sidenav) > 0 {
		filtered := make([]models.DocumentMeta, 0, len(documentMetas))
		for _, v := range documentMetas {
			if v.Sidenav == sidenav {
				filtered = append(filtered, v)
			}
		}
		documentMetas = filtered
	}

	trees := cc.BuildNavigationTrees(documentMetas)
	c.JSON(http.StatusOK, trees)
}

// GetDocumentByPermalink returns the document associated with the provided permalink.
//
// @ID getDocumentByPermalink
// @Summary Get document content by permalink
// @Tags documents
// @Router /content/documents/{permalink} [get]
// @Param permalink path string true "Document permalink"
// @Success 200 {object} map[string]string "Returns the document with its body"
// @Failure 400
// @Failure 404
// @Failure 500
func (cc *Controller) GetDocumentByPermalink(c *gin.Context) {
	ctx := c.Request.Context()

	permalink := c.Param("permalink")
	if len(permalink) <= 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse("path variable 'permalink' is missing"))
		return
	}

	var documentContent models.DocumentContent
	err := cc.FindDocumentContentByPermalink(ctx, permalink, &documentContent)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, api.NewErrorResponsef("no document found for permalink %s", permalink))
		return
	}
	if err != nil {
		cc.LogError(logging.GetLogType("content"), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponsef("error reading document info: %s", err))
		return
	}

	response := struct {
		Permalink string     `json:"permalink"`
		Title     string     `json:"title"`
		Layout    string     `json:"layout"`
		Category  string     `json:"category,omitempty"`
		RevisedAt *time.Time `json:"revisedAt,omitempty"`
		Excerpt   string     `json:"excerpt"`
		Body      string     `json:"body"`
	}{
		Permalink: documentContent.Meta.Permalink,
		Title:     documentContent.Meta.Title,
		Layout:    documentContent.Meta.Layout,
		Category:  documentContent.Meta.Category,
		RevisedAt: documentContent.Meta.RevisedAt,
		Excerpt:   documentContent.Excerpt,
		Body:      documentContent.Body,
	}
	c.JSON(http.StatusOK, response)
}

func (cc *Controller) GetDocumentSearchTermMatches(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		msg := fmt.Sprintf("error while reading request body: %s", err)
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(msg))
		return
	}

	var payload DocumentSearchPayload
	err = json.Unmarshal(body, &payload)
	if err != nil {
		msg := fmt.Sprintf("error while unmarshaling request body: %s", err)
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(msg))
		return
	}

	if len(payload.Term) <= 0 {
		msg := "did not perform search because no search term was present"
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.NewErrorResponse(msg))
		return
	}

	pageSize := 5
	if payload.Pageable.PageSize > 0 {
		pageSize = payload.Pageable.PageSize
	}

	searchMatches := make([]models.DocumentContent, 0)
	err = cc.FindDocumentsBySearchTermSimple(ctx, payload.Term, &searchMatches)
	if err != nil {
		msg := fmt.Sprintf("error reading document search matches: %s", err)
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(msg))
		return
	}

	matchesWithSimilarity := make([]MatchesWithSimilarity, 0, len(searchMatches))
	for _, v := range searchMatches {
		s := TrigramSorensenDiceSimilarity(v.Body, payload.Term)
		matchesWithSimilarity = append(matchesWithSimilarity, MatchesWithSimilarity{content: v, similarity: s})
	}

	// sorts matches based on similarity in descending order (the most similar match is the first element)
	slices.SortFunc(matchesWithSimilarity, func(a, b MatchesWithSimilarity) int {
		if a.similarity > b.similarity {
			return -1
		}
		if a.similarity < b.similarity {
			return 1
		}
		return 0
	})

	firstPage := make([]models.DocumentContent, 0, pageSize)
	for i, v := range matchesWithSimilarity {
		if i >= pageSize {
			break
		}
		firstPage = append(firstPage, v.content)
	}

	var matchCount int
	err = cc.CountDocumentMatchesBySearchTermSimple(ctx, payload.Term, &matchCount)
	if err != nil {
		msg := fmt.Sprintf("error counting document search matches: %s", err)
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(msg))
		return
	}

	page, err := cc.mapToDocumentSearchPage(payload, pageSize, matchCount, firstPage)
	if err != nil {
		msg := fmt.Sprintf("error mapping to page response: %s", err)
		cc.LogError(logging.GetLogType("content"), msg)
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.NewErrorResponse(msg))
		return
	}

	c.JSON(http.StatusOK, page)
}
