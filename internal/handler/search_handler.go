package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/dto"
	"github.com/noah-isme/sma-report-engine/internal/middleware"
	"github.com/noah-isme/sma-report-engine/internal/service"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type searchService interface {
	Search(ctx context.Context, req service.SearchRequest) ([]dto.SearchResult, error)
}

// SearchHandler exposes student search.
type SearchHandler struct {
	search searchService
}

// NewSearchHandler constructs the handler.
func NewSearchHandler(search searchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @Summary Search students
// @Description Matches student numbers and profile names; each hit lists the strategies that found it.
// @Tags Students
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req service.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid search parameters"))
		return
	}
	results, err := h.search.Search(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(results))
	response.JSON(c, http.StatusOK, results, nil, middleware.ExtractMeta(c))
}
