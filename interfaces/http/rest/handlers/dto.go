package handlers

import (
	"time"

	"vaultgraph/application/services"
	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
)

// NodeResponse is the wire shape of a DataNode.
type NodeResponse struct {
	UUID         string                  `json:"uuid"`
	NType        string                  `json:"ntype"`
	Path         string                  `json:"path,omitempty"`
	Attributes   valueobjects.Attributes `json:"attributes"`
	CreatedTime  time.Time               `json:"created_time"`
	ModifiedTime time.Time               `json:"modified_time"`
	Transient    bool                    `json:"transient,omitempty"`
}

// EdgeResponse is the wire shape of an Edge.
type EdgeResponse struct {
	UUID       string                  `json:"uuid"`
	SourceUUID string                  `json:"source_uuid"`
	TargetUUID string                  `json:"target_uuid"`
	Contains   bool                    `json:"contains"`
	Attributes valueobjects.Attributes `json:"attributes"`
	Transient  bool                    `json:"transient,omitempty"`
}

// ContextResponse is the wire shape of a reconciled context.
type ContextResponse struct {
	Nodes   []NodeResponse    `json:"nodes"`
	Edges   []EdgeResponse    `json:"edges"`
	Context *entities.Context `json:"context"`
}

// ConnectionsResponse is the wire shape of a resolver result.
type ConnectionsResponse struct {
	Focal       *NodeResponse        `json:"focal,omitempty"`
	Connections []ConnectionResponse `json:"connections"`
	Edges       []EdgeResponse       `json:"edges"`
}

// ConnectionResponse pairs a neighbor with its direct edge, when one exists.
type ConnectionResponse struct {
	Node NodeResponse  `json:"node"`
	Edge *EdgeResponse `json:"edge,omitempty"`
}

func toNodeResponse(node *entities.DataNode) NodeResponse {
	resp := NodeResponse{
		UUID:         node.UUID.String(),
		NType:        string(node.NType),
		Attributes:   node.Attributes,
		CreatedTime:  node.CreatedTime,
		ModifiedTime: node.ModifiedTime,
		Transient:    !node.IsPersisted(),
	}
	if node.HasPath() {
		resp.Path = node.Path.String()
	}
	if resp.Attributes == nil {
		resp.Attributes = valueobjects.Attributes{}
	}
	return resp
}

func toEdgeResponse(edge *entities.Edge) EdgeResponse {
	resp := EdgeResponse{
		UUID:       edge.UUID.String(),
		SourceUUID: edge.Source.String(),
		TargetUUID: edge.Target.String(),
		Contains:   edge.Contains,
		Attributes: edge.Attributes,
		Transient:  !edge.IsPersisted(),
	}
	if resp.Attributes == nil {
		resp.Attributes = valueobjects.Attributes{}
	}
	return resp
}

func toContextResponse(result *services.ContextResult) ContextResponse {
	resp := ContextResponse{
		Nodes:   make([]NodeResponse, 0, len(result.Nodes)),
		Edges:   make([]EdgeResponse, 0, len(result.Edges)),
		Context: result.Context,
	}
	for _, node := range result.Nodes {
		resp.Nodes = append(resp.Nodes, toNodeResponse(node))
	}
	for _, edge := range result.Edges {
		resp.Edges = append(resp.Edges, toEdgeResponse(edge))
	}
	return resp
}

func toConnectionsResponse(set *services.ConnectionSet) ConnectionsResponse {
	resp := ConnectionsResponse{
		Connections: make([]ConnectionResponse, 0, len(set.Connections)),
		Edges:       make([]EdgeResponse, 0, len(set.Edges)),
	}
	if set.Focal != nil {
		focal := toNodeResponse(set.Focal)
		resp.Focal = &focal
	}
	for _, pair := range set.Connections {
		conn := ConnectionResponse{Node: toNodeResponse(pair.Node)}
		if pair.Edge != nil {
			edge := toEdgeResponse(pair.Edge)
			conn.Edge = &edge
		}
		resp.Connections = append(resp.Connections, conn)
	}
	for _, edge := range set.Edges {
		resp.Edges = append(resp.Edges, toEdgeResponse(edge))
	}
	return resp
}
