package handlers

import (
	"encoding/json"
	"net/http"

	"vaultgraph/application/ports"
	"vaultgraph/application/services"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	apperrors "vaultgraph/pkg/errors"
	"vaultgraph/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextHandler handles context reconciliation and saved-view HTTP requests
type ContextHandler struct {
	contextService *services.ContextService
	views          ports.ViewStore
	errHandler     *apperrors.ErrorHandler
	logger         *zap.Logger
}

// NewContextHandler creates a new context handler
func NewContextHandler(
	contextService *services.ContextService,
	views ports.ViewStore,
	errHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *ContextHandler {
	return &ContextHandler{
		contextService: contextService,
		views:          views,
		errHandler:     errHandler,
		logger:         logger,
	}
}

// SaveViewRequest represents the request body for saving a context layout
type SaveViewRequest struct {
	FocalUUID  string              `json:"focal_uuid" validate:"required,uuid"`
	ParentUUID *string             `json:"parent_uuid,omitempty" validate:"omitempty,uuid"`
	ViewNodes  []entities.ViewNode `json:"view_nodes" validate:"required"`
}

// OpenContext handles GET /context?path=
func (h *ContextHandler) OpenContext(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("path")
	if raw == "" {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("path query parameter is required"))
		return
	}

	path, err := valueobjects.NewNodePath(raw)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	result, err := h.contextService.OpenContextFromPath(r.Context(), path)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toContextResponse(result))
}

// SaveView handles POST /views
func (h *ContextHandler) SaveView(w http.ResponseWriter, r *http.Request) {
	var req SaveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	focal, err := uuid.Parse(req.FocalUUID)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid focal_uuid"))
		return
	}

	view := entities.NewContext(focal)
	if req.ParentUUID != nil {
		parent, err := uuid.Parse(*req.ParentUUID)
		if err != nil {
			h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid parent_uuid"))
			return
		}
		view.SetParent(parent)
	}
	for _, vn := range req.ViewNodes {
		view.AddViewNode(vn)
	}

	if err := h.contextService.SaveView(r.Context(), view); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]string{
		"message":    "View saved successfully",
		"focal_uuid": focal.String(),
	})
}

// GetView handles GET /views/{focalUUID}
func (h *ContextHandler) GetView(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "focalUUID")
	focal, err := uuid.Parse(raw)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid focal uuid: "+raw))
		return
	}

	view, err := h.views.GetSavedView(r.Context(), focal)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

func (h *ContextHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
