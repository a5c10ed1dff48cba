package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-report-engine/internal/middleware"
	"github.com/noah-isme/sma-report-engine/internal/service"
	appErrors "github.com/noah-isme/sma-report-engine/pkg/errors"
	"github.com/noah-isme/sma-report-engine/pkg/export"
	"github.com/noah-isme/sma-report-engine/pkg/response"
)

type documentRenderer interface {
	Render(doc interface{}, format export.Format) (*service.RenderedDocument, error)
}

// respondDocument sends doc as JSON, or as a rendered download when the
// request carries ?format=csv|pdf|xlsx.
func respondDocument(c *gin.Context, renderer documentRenderer, doc interface{}) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be one of json, csv, pdf, xlsx"))
		return
	}
	if format == export.FormatJSON || renderer == nil {
		response.JSON(c, http.StatusOK, doc, nil, middleware.ExtractMeta(c))
		return
	}
	rendered, err := renderer.Render(doc, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, rendered.Filename, rendered.ContentType, rendered.Body)
}
