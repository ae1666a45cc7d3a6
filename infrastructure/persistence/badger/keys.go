package badger

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// Key layout. Every record class gets its own single-byte-ish prefix so
// prefix scans stay cheap and namespaces cannot collide:
//
//	n:<uuid>           node record
//	p:<path>           path alias → node uuid
//	t:<ntype>:<uuid>   type-tag index entry
//	e:<uuid>           edge record
//	s:<src>:<edge>     outgoing adjacency index
//	r:<tgt>:<edge>     incoming adjacency index
//	c:<src>:<tgt>      contains-edge uniqueness marker → edge uuid
//	d:n:<seq>          node engine-id → node uuid
//	d:e:<seq>          edge engine-id → edge uuid
//	v:<focal-uuid>     saved view record
const (
	prefixNode     = "n:"
	prefixPath     = "p:"
	prefixType     = "t:"
	prefixEdge     = "e:"
	prefixOutgoing = "s:"
	prefixIncoming = "r:"
	prefixContains = "c:"
	prefixNodeID   = "d:n:"
	prefixEdgeID   = "d:e:"
	prefixView     = "v:"
)

func nodeKey(id uuid.UUID) []byte {
	return []byte(prefixNode + id.String())
}

func pathKey(path string) []byte {
	return []byte(prefixPath + path)
}

func typeKey(ntype string, id uuid.UUID) []byte {
	return []byte(prefixType + ntype + ":" + id.String())
}

func edgeKey(id uuid.UUID) []byte {
	return []byte(prefixEdge + id.String())
}

func outgoingKey(source, edge uuid.UUID) []byte {
	return []byte(prefixOutgoing + source.String() + ":" + edge.String())
}

func outgoingPrefix(source uuid.UUID) []byte {
	return []byte(prefixOutgoing + source.String() + ":")
}

func incomingKey(target, edge uuid.UUID) []byte {
	return []byte(prefixIncoming + target.String() + ":" + edge.String())
}

func incomingPrefix(target uuid.UUID) []byte {
	return []byte(prefixIncoming + target.String() + ":")
}

func containsKey(source, target uuid.UUID) []byte {
	return []byte(prefixContains + source.String() + ":" + target.String())
}

func nodeIDKey(seq uint64) []byte {
	return append([]byte(prefixNodeID), beUint64(seq)...)
}

func edgeIDKey(seq uint64) []byte {
	return append([]byte(prefixEdgeID), beUint64(seq)...)
}

func viewKey(focal uuid.UUID) []byte {
	return []byte(prefixView + focal.String())
}

func beUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// edgeUUIDFromIndexKey strips the "<prefix><endpoint>:" lead of an
// adjacency index key, leaving the edge uuid.
func edgeUUIDFromIndexKey(key, prefix []byte) (uuid.UUID, error) {
	return uuid.ParseBytes(key[len(prefix):])
}
