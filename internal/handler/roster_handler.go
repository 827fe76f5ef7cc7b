package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/dto"
	"github.com/study-crew/peer-assist-api/internal/models"
	"github.com/study-crew/peer-assist-api/internal/service"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
	"github.com/study-crew/peer-assist-api/pkg/response"
)

type rosterReconciler interface {
	Reconcile(ctx context.Context, req dto.ReconcileRequest) (*dto.ReconcileResponse, error)
}

type rosterReadService interface {
	ListByAssistant(ctx context.Context, assistantID int64) ([]dto.RosterEntry, bool, error)
	AssignmentDetails(ctx context.Context, assistantID int64, courseRef string) (*models.CourseAssignmentDetail, error)
	AssistantsForCourse(ctx context.Context, courseRef string) ([]models.CourseAssistant, error)
}

// RosterHandler exposes roster reconciliation and read endpoints.
type RosterHandler struct {
	reconciler rosterReconciler
	roster     rosterReadService
	metrics    *service.MetricsService
}

// NewRosterHandler constructs a roster handler.
func NewRosterHandler(reconciler rosterReconciler, roster rosterReadService, metrics *service.MetricsService) *RosterHandler {
	return &RosterHandler{reconciler: reconciler, roster: roster, metrics: metrics}
}

// Reconcile godoc
// @Summary Reconcile assistant roster
// @Description Replace the assistant's course assignments, special flags, and availability with the submitted desired state
// @Tags Roster
// @Accept json
// @Produce json
// @Param assistantId path int true "Assistant ID"
// @Param payload body dto.ReconcileRequest true "Desired roster state"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assistants/{assistantId}/roster [post]
func (h *RosterHandler) Reconcile(c *gin.Context) {
	assistantID, ok := assistantIDParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant id"))
		return
	}

	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reconciliation payload"))
		return
	}
	if req.AssistantID != 0 && req.AssistantID != assistantID {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "assistant id in payload does not match route"))
		return
	}
	req.AssistantID = assistantID

	res, err := h.reconciler.Reconcile(c.Request.Context(), req)
	if err != nil {
		h.metrics.ObserveReconciliation("error")
		response.Error(c, err)
		return
	}

	h.metrics.ObserveReconciliation("ok")
	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List assistant roster
// @Description Returns the assistant's assignments with availability windows
// @Tags Roster
// @Produce json
// @Param assistantId path int true "Assistant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assistants/{assistantId}/roster [get]
func (h *RosterHandler) List(c *gin.Context) {
	assistantID, ok := assistantIDParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant id"))
		return
	}

	entries, cached, err := h.roster.ListByAssistant(c.Request.Context(), assistantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	source := "database"
	if cached {
		source = "cache"
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"source": source})
}

// AssignmentDetails godoc
// @Summary Get one assignment
// @Description Returns a single assignment; the course may be referenced by id or code
// @Tags Roster
// @Produce json
// @Param assistantId path int true "Assistant ID"
// @Param courseRef path string true "Course ID or code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assistants/{assistantId}/roster/{courseRef} [get]
func (h *RosterHandler) AssignmentDetails(c *gin.Context) {
	assistantID, ok := assistantIDParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assistant id"))
		return
	}

	assignment, err := h.roster.AssignmentDetails(c.Request.Context(), assistantID, c.Param("courseRef"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, assignment, nil)
}

// AssistantsForCourse godoc
// @Summary List assistants for a course
// @Description Returns assistants currently assigned to the course
// @Tags Courses
// @Produce json
// @Param courseRef path string true "Course ID or code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{courseRef}/assistants [get]
func (h *RosterHandler) AssistantsForCourse(c *gin.Context) {
	assistants, err := h.roster.AssistantsForCourse(c.Request.Context(), c.Param("courseRef"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, assistants, nil)
}
