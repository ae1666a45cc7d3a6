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

// NodeHandler handles node and edge HTTP requests
type NodeHandler struct {
	graphService *services.GraphService
	resolver     *services.ConnectionResolver
	store        ports.GraphStore
	errHandler   *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	graphService *services.GraphService,
	resolver *services.ConnectionResolver,
	store ports.GraphStore,
	errHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		graphService: graphService,
		resolver:     resolver,
		store:        store,
		errHandler:   errHandler,
		logger:       logger,
	}
}

// CreateNodeRequest describes one node to insert. A node is either pathed
// (path set, ntype file or directory) or virtual (no path, random identity).
// Pathless nodes may carry any non-reserved ntype tag as their virtual kind.
type CreateNodeRequest struct {
	Path       string                  `json:"path,omitempty"`
	NType      string                  `json:"ntype,omitempty"`
	Attributes valueobjects.Attributes `json:"attributes,omitempty"`
}

// CreateNodesRequest represents the request body for inserting nodes
type CreateNodesRequest struct {
	Nodes []CreateNodeRequest `json:"nodes" validate:"required,min=1,max=100"`
}

// CreateEdgeRequest represents the request body for creating a link edge
type CreateEdgeRequest struct {
	SourceUUID string                  `json:"source_uuid" validate:"required,uuid"`
	TargetUUID string                  `json:"target_uuid" validate:"required,uuid"`
	Attributes valueobjects.Attributes `json:"attributes,omitempty"`
}

// CreateNodes handles POST /nodes
func (h *NodeHandler) CreateNodes(w http.ResponseWriter, r *http.Request) {
	var req CreateNodesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	nodes := make([]*entities.DataNode, 0, len(req.Nodes))
	for _, spec := range req.Nodes {
		node, err := h.buildNode(spec)
		if err != nil {
			h.errHandler.Handle(w, r, err)
			return
		}
		nodes = append(nodes, node)
	}

	inserted, err := h.graphService.InsertNodes(r.Context(), nodes)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	resp := make([]NodeResponse, 0, len(inserted))
	for _, node := range inserted {
		resp = append(resp, toNodeResponse(node))
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{"nodes": resp})
}

// GetNode handles GET /nodes/{nodeUUID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUIDParam(w, r, "nodeUUID")
	if !ok {
		return
	}

	node, err := h.store.GetNode(r.Context(), ports.UUIDHandle(id))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toNodeResponse(node))
}

// GetNodeByPath handles GET /nodes?path=
func (h *NodeHandler) GetNodeByPath(w http.ResponseWriter, r *http.Request) {
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

	node, err := h.store.GetNode(r.Context(), ports.PathHandle(path))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toNodeResponse(node))
}

// GetConnections handles GET /nodes/{nodeUUID}/connections
func (h *NodeHandler) GetConnections(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseUUIDParam(w, r, "nodeUUID")
	if !ok {
		return
	}

	set, err := h.resolver.OpenNodeConnections(r.Context(), ports.UUIDHandle(id))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toConnectionsResponse(set))
}

// CreateEdge handles POST /edges
func (h *NodeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	source, err := uuid.Parse(req.SourceUUID)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid source_uuid"))
		return
	}
	target, err := uuid.Parse(req.TargetUUID)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid target_uuid"))
		return
	}

	edge, err := h.graphService.InsertLink(r.Context(), source, target, req.Attributes)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toEdgeResponse(edge))
}

func (h *NodeHandler) buildNode(spec CreateNodeRequest) (*entities.DataNode, error) {
	ntype := entities.NodeType(spec.NType)
	if spec.Path == "" {
		if ntype == "" {
			ntype = entities.NodeTypeVirtual
		}
		node := entities.NewVirtualNode(ntype)
		node.MergeAttributes(spec.Attributes)
		return node, nil
	}

	path, err := valueobjects.NewNodePath(spec.Path)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if path.IsArchetype() {
		return nil, apperrors.NewValidationError("archetype paths cannot be inserted")
	}
	if ntype == "" {
		ntype = entities.NodeTypeFile
	}
	node := entities.NewNodeFromPath(path, ntype)
	node.MergeAttributes(spec.Attributes)
	return node, nil
}

func (h *NodeHandler) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		h.errHandler.Handle(w, r, apperrors.NewValidationError("invalid node uuid: "+raw))
		return uuid.Nil, false
	}
	return id, true
}

func (h *NodeHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
