package valueobjects

import (
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// RootUUID is the reserved identity of the synthetic root node. The root has
// no real path to hash, so it gets a fixed constant instead, keeping it
// identity-stable across restarts and reinstalls.
var RootUUID = uuid.MustParse("00000000-0000-4000-8000-000000000001")

// nodeNamespace and edgeNamespace salt the v5 derivation so node and edge
// identifier spaces cannot collide even for identical input bytes.
var (
	nodeNamespace = uuid.MustParse("a1b7b91c-3c53-5f10-9d8d-6a0f4a8e2d01")
	edgeNamespace = uuid.MustParse("a1b7b91c-3c53-5f10-9d8d-6a0f4a8e2d02")
)

// DeriveNodeUUID derives the stable identity of a node from its logical
// path. Pure function: the same path always yields the same uuid. The root
// archetype is the one exception and maps to RootUUID.
func DeriveNodeUUID(p NodePath) uuid.UUID {
	if p.IsRoot() {
		return RootUUID
	}
	return uuid.NewSHA1(nodeNamespace, []byte(p.String()))
}

// DeriveEdgeUUID derives an edge identity from its endpoints, creation
// instant and kind. The timestamp participates, so re-creating an edge
// between the same endpoints at a different instant yields a different
// uuid; endpoint-level dedup is the caller's responsibility.
func DeriveEdgeUUID(source, target uuid.UUID, ts time.Time, kind string) uuid.UUID {
	buf := make([]byte, 0, 16+16+8+len(kind))
	buf = append(buf, source[:]...)
	buf = append(buf, target[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(ts.UnixNano()))
	buf = append(buf, kind...)
	return uuid.NewSHA1(edgeNamespace, buf)
}
