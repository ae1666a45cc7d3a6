package validators

import (
	"fmt"
	"strings"

	"vaultgraph/domain/core/entities"
	"vaultgraph/pkg/errors"

	"github.com/google/uuid"
)

// NodeValidator validates node-related domain rules before insertion.
type NodeValidator struct {
	nameMaxLength    int
	attrKeyMaxLength int
	maxAttributes    int
}

// NewNodeValidator creates a new node validator with default rules
func NewNodeValidator() *NodeValidator {
	return &NodeValidator{
		nameMaxLength:    255,
		attrKeyMaxLength: 100,
		maxAttributes:    100,
	}
}

// ValidateNode checks a candidate node against insertion rules: identity is
// set, ntype agrees with the presence of a path, and the attribute bag is
// within bounds.
func (v *NodeValidator) ValidateNode(node *entities.DataNode) error {
	if node == nil {
		return errors.NewValidationError("node is required")
	}
	if node.UUID == uuid.Nil {
		return errors.NewValidationError("node uuid is required")
	}

	switch node.NType {
	case entities.NodeTypeFile, entities.NodeTypeDirectory:
		if !node.HasPath() {
			return errors.NewValidationError(
				fmt.Sprintf("%s nodes must carry a path", node.NType))
		}
	case entities.NodeTypeVirtual:
		if node.HasPath() {
			return errors.NewValidationError("virtual nodes must not carry a path")
		}
	case entities.NodeTypeRoot, entities.NodeTypeArchetype:
		return errors.NewValidationError(
			fmt.Sprintf("%s nodes are store-managed and cannot be inserted", node.NType))
	default:
		// User-defined tags are virtual kinds.
		if strings.TrimSpace(string(node.NType)) == "" {
			return errors.NewValidationError("node type is required")
		}
		if node.HasPath() {
			return errors.NewValidationError("virtual nodes must not carry a path")
		}
	}

	if name := node.Name(); len(name) > v.nameMaxLength {
		return errors.NewValidationError(
			fmt.Sprintf("node name exceeds maximum length of %d", v.nameMaxLength))
	}

	return v.validateAttributes(node)
}

func (v *NodeValidator) validateAttributes(node *entities.DataNode) error {
	if len(node.Attributes) > v.maxAttributes {
		return errors.NewValidationError(
			fmt.Sprintf("node carries more than %d attributes", v.maxAttributes))
	}
	for key := range node.Attributes {
		if strings.TrimSpace(key) == "" {
			return errors.NewValidationError("attribute keys cannot be empty")
		}
		if len(key) > v.attrKeyMaxLength {
			return errors.NewValidationError(
				fmt.Sprintf("attribute key %q exceeds maximum length of %d", key, v.attrKeyMaxLength))
		}
	}
	return nil
}

// EdgeValidator validates edge-related domain rules
type EdgeValidator struct{}

// NewEdgeValidator creates a new edge validator
func NewEdgeValidator() *EdgeValidator {
	return &EdgeValidator{}
}

// ValidateLink validates a link edge creation between two nodes.
func (v *EdgeValidator) ValidateLink(source, target uuid.UUID) error {
	if source == uuid.Nil || target == uuid.Nil {
		return errors.NewValidationError("edge endpoints are required")
	}
	if source == target {
		return errors.NewValidationError("self-referential edges are not allowed")
	}
	return nil
}
