package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/service"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
	"github.com/study-crew/peer-assist-api/pkg/response"
)

type scheduleExporter interface {
	Schedule(ctx context.Context, assistantID int64, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler serves schedule exports.
type ExportHandler struct {
	exports scheduleExporter
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports scheduleExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Schedule godoc
// @Summary Export assistant schedule
// @Description Download the assistant's course schedule as CSV or PDF
// @Tags Roster
// @Produce text/csv
// @Produce application/pdf
// @Param assistantId path int true "Assistant ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assistants/{assistantId}/schedule/export [get]
func (h *ExportHandler) Schedule(c *gin.Context) {
	assistantID, ok := assistantIDParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant id"))
		return
	}

	format := c.DefaultQuery("format", "csv")
	result, err := h.exports.Schedule(c.Request.Context(), assistantID, service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
