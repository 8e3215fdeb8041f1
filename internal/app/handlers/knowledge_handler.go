package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/docsmait/docsmait/internal/domain/dto"
	"github.com/docsmait/docsmait/internal/domain/review"
	"github.com/docsmait/docsmait/internal/domain/services"
)

// KnowledgeHandler serves knowledge collections, documents and search.
type KnowledgeHandler struct {
	*BaseHandler
	knowledgeService *services.KnowledgeService
}

func NewKnowledgeHandler(base *BaseHandler, knowledgeService *services.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{BaseHandler: base, knowledgeService: knowledgeService}
}

// CreateCollection handles POST /api/v1/knowledge/collections
func (h *KnowledgeHandler) CreateCollection(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	var req dto.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	projectID := getUUIDQueryParam(c, "project_id")
	collection, err := h.knowledgeService.CreateCollection(c.Request.Context(), projectID, userCtx.UserID, req.Name, req.Description)
	if err != nil {
		h.respondKnowledgeError(c, err)
		return
	}

	h.RespondCreated(c, collection)
}

// ListCollections handles GET /api/v1/knowledge/collections
func (h *KnowledgeHandler) ListCollections(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}

	projectID := getUUIDQueryParam(c, "project_id")
	collections, err := h.knowledgeService.ListCollections(c.Request.Context(), projectID)
	if err != nil {
		h.RespondInternalError(c, "failed to list collections", err)
		return
	}

	h.RespondSuccess(c, collections)
}

// DeleteCollection handles DELETE /api/v1/knowledge/collections/:id
func (h *KnowledgeHandler) DeleteCollection(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	collectionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.knowledgeService.DeleteCollection(c.Request.Context(), collectionID); err != nil {
		h.respondKnowledgeError(c, err)
		return
	}

	h.RespondMessage(c, "collection deleted")
}

// AddDocument handles POST /api/v1/knowledge/collections/:id/documents
func (h *KnowledgeHandler) AddDocument(c *gin.Context) {
	userCtx, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}
	collectionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AddKnowledgeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	document, err := h.knowledgeService.AddDocument(c.Request.Context(), services.AddDocumentParams{
		CollectionID: collectionID,
		CreatedBy:    userCtx.UserID,
		Title:        req.Title,
		Content:      req.Content,
		Embedding:    req.Embedding,
	})
	if err != nil {
		h.respondKnowledgeError(c, err)
		return
	}

	h.RespondCreated(c, document)
}

// ListDocuments handles GET /api/v1/knowledge/collections/:id/documents
func (h *KnowledgeHandler) ListDocuments(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	collectionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	params := h.ParsePagination(c)
	documents, total, err := h.knowledgeService.ListDocuments(c.Request.Context(), collectionID, params)
	if err != nil {
		h.RespondInternalError(c, "failed to list documents", err)
		return
	}

	h.RespondSuccess(c, h.Paginated(documents, params, total))
}

// Search handles POST /api/v1/knowledge/collections/:id/search. A
// request with an embedding runs semantic search; otherwise it falls
// back to keyword matching.
func (h *KnowledgeHandler) Search(c *gin.Context) {
	if _, ok := h.AuthenticateUser(c); !ok {
		return
	}
	collectionID, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.KnowledgeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "invalid request body", err)
		return
	}

	results, err := h.knowledgeService.Search(c.Request.Context(), collectionID, req.Query, req.Embedding, req.Limit)
	if err != nil {
		h.respondKnowledgeError(c, err)
		return
	}

	h.RespondSuccess(c, results)
}

func (h *KnowledgeHandler) respondKnowledgeError(c *gin.Context, err error) {
	var validation *review.ValidationError
	switch {
	case errors.Is(err, services.ErrCollectionNotFound):
		h.RespondNotFound(c, "collection not found")
	case errors.Is(err, services.ErrKnowledgeDocNotFound):
		h.RespondNotFound(c, "knowledge document not found")
	case errors.Is(err, services.ErrBadEmbedding):
		h.RespondBadRequest(c, "embedding has the wrong dimension", nil)
	case errors.As(err, &validation):
		h.RespondBadRequest(c, validation.Reason, nil)
	default:
		h.RespondInternalError(c, "knowledge operation failed", err)
	}
}
