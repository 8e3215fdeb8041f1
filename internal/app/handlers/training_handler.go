package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// TrainingHandler serves training assessment endpoints.
type TrainingHandler struct {
	*BaseHandler
	trainingService *services.TrainingService
}

func NewTrainingHandler(base *BaseHandler, trainingService *services.TrainingService) *TrainingHandler {
	return &TrainingHandler{BaseHandler: base, trainingService: trainingService}
}

// RecordAssessment handles POST /api/v1/training/assessments
func (h *TrainingHandler) RecordAssessment(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.RecordAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	record, err := h.trainingService.RecordAssessment(c.Request.Context(), services.RecordAssessmentParams{
		UserID:       userCtx.UserID,
		CollectionID: req.CollectionID,
		Score:        req.Score,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		var validation *review.ValidationError
		switch {
		case errors.Is(err, services.ErrCollectionNotFound):
			h.RespondNotFound(c, "collection not found")
		case errors.As(err, &validation):
			h.RespondBadRequest(c, validation.Reason, nil)
		default:
			h.RespondInternalError(c, "failed to record assessment", err)
		}
		return
	}

	h.RespondCreated(c, record)
}

// MyRecords handles GET /api/v1/training/assessments
func (h *TrainingHandler) MyRecords(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	records, total, err := h.trainingService.ListByUser(c.Request.Context(), userCtx.UserID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list assessments", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(records, params, total))
}

// CollectionRecords handles GET /api/v1/knowledge/collections/:id/assessments
func (h *TrainingHandler) CollectionRecords(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	collectionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	records, total, err := h.trainingService.ListByCollection(c.Request.Context(), collectionID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list assessments", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(records, params, total))
}

// Latest handles GET /api/v1/training/assessments/latest?collection_id=
func (h *TrainingHandler) Latest(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	collectionID := getUUIDQueryParam(c, "collection_id")
	if collectionID == nil {
		h.RespondBadRequest(c, "collection_id is required", nil)
		return
	}

	record, err := h.trainingService.LatestForUser(c.Request.Context(), userCtx.UserID, *collectionID)
	if err != nil {
		h.RespondInternalError(c, "failed to load assessment", err)
		return
	}
	if record == nil {
		h.RespondNotFound(c, "no assessment recorded")
		return
	}

	h.RespondSuccess(c, record)
}
