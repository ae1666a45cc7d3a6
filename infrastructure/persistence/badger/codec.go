package badger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"vaultgraph/domain/core/entities"
	"vaultgraph/domain/core/valueobjects"
	pkgerrors "vaultgraph/pkg/errors"
)

// nodeRecord is the persisted shape of a DataNode. Attributes keep their
// typed-union JSON form, so records stay inspectable with badger tooling.
type nodeRecord struct {
	UUID         string                  `json:"uuid"`
	DBID         int64                   `json:"db_id"`
	Path         string                  `json:"path,omitempty"`
	NType        string                  `json:"ntype"`
	Attributes   valueobjects.Attributes `json:"attributes,omitempty"`
	CreatedTime  time.Time               `json:"created_time"`
	ModifiedTime time.Time               `json:"modified_time"`
}

// edgeRecord is the persisted shape of an Edge.
type edgeRecord struct {
	UUID        string                  `json:"uuid"`
	DBID        int64                   `json:"db_id"`
	Source      string                  `json:"source"`
	Target      string                  `json:"target"`
	Contains    bool                    `json:"contains"`
	Attributes  valueobjects.Attributes `json:"attributes,omitempty"`
	CreatedTime time.Time               `json:"created_time"`
}

func encodeNode(node *entities.DataNode) ([]byte, error) {
	rec := nodeRecord{
		UUID:         node.UUID.String(),
		DBID:         node.DBID,
		NType:        string(node.NType),
		Attributes:   node.Attributes,
		CreatedTime:  node.CreatedTime,
		ModifiedTime: node.ModifiedTime,
	}
	if node.HasPath() {
		rec.Path = node.Path.String()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, pkgerrors.NewStoreError("encode_node", err)
	}
	return data, nil
}

func decodeNode(data []byte) (*entities.DataNode, error) {
	var rec nodeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, pkgerrors.NewStoreError("decode_node", err)
	}
	id, err := uuid.Parse(rec.UUID)
	if err != nil {
		return nil, pkgerrors.NewStoreError("decode_node", err)
	}
	node := &entities.DataNode{
		UUID:         id,
		DBID:         rec.DBID,
		NType:        entities.NodeType(rec.NType),
		Attributes:   rec.Attributes,
		CreatedTime:  rec.CreatedTime,
		ModifiedTime: rec.ModifiedTime,
	}
	if rec.Path != "" {
		p, err := valueobjects.NewNodePath(rec.Path)
		if err != nil {
			return nil, pkgerrors.NewStoreError("decode_node", err)
		}
		node.Path = p
	}
	if node.Attributes == nil {
		node.Attributes = valueobjects.Attributes{}
	}
	return node, nil
}

func encodeEdge(edge *entities.Edge) ([]byte, error) {
	rec := edgeRecord{
		UUID:        edge.UUID.String(),
		DBID:        edge.DBID,
		Source:      edge.Source.String(),
		Target:      edge.Target.String(),
		Contains:    edge.Contains,
		Attributes:  edge.Attributes,
		CreatedTime: edge.CreatedTime,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, pkgerrors.NewStoreError("encode_edge", err)
	}
	return data, nil
}

func decodeEdge(data []byte) (*entities.Edge, error) {
	var rec edgeRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, pkgerrors.NewStoreError("decode_edge", err)
	}
	id, err := uuid.Parse(rec.UUID)
	if err != nil {
		return nil, pkgerrors.NewStoreError("decode_edge", err)
	}
	source, err := uuid.Parse(rec.Source)
	if err != nil {
		return nil, pkgerrors.NewStoreError("decode_edge", err)
	}
	target, err := uuid.Parse(rec.Target)
	if err != nil {
		return nil, pkgerrors.NewStoreError("decode_edge", err)
	}
	edge := &entities.Edge{
		UUID:        id,
		DBID:        rec.DBID,
		Source:      source,
		Target:      target,
		Contains:    rec.Contains,
		Attributes:  rec.Attributes,
		CreatedTime: rec.CreatedTime,
	}
	if edge.Attributes == nil {
		edge.Attributes = valueobjects.Attributes{}
	}
	return edge, nil
}
