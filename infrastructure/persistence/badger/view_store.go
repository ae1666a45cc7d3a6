package badger

import (
	"context"
	"encoding/json"
	"errors"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"vaultgraph/application/ports"
	"vaultgraph/domain/core/entities"
	pkgerrors "vaultgraph/pkg/errors"
)

// ViewStore persists saved context layouts keyed by focal uuid, sharing the
// graph store's database so a vault stays a single on-disk artifact.
type ViewStore struct {
	store *Store
}

var _ ports.ViewStore = (*ViewStore)(nil)

// NewViewStore creates a view store backed by the given graph store.
func NewViewStore(store *Store) *ViewStore {
	return &ViewStore{store: store}
}

// SaveView persists the layout for the context's focal uuid, replacing any
// previous save.
func (v *ViewStore) SaveView(ctx context.Context, view *entities.Context) error {
	if err := ctx.Err(); err != nil {
		return pkgerrors.NewStoreError("save_view", err)
	}
	if view == nil || view.FocalUUID == uuid.Nil {
		return pkgerrors.NewValidationError("view must have a focal uuid")
	}

	data, err := json.Marshal(view)
	if err != nil {
		return pkgerrors.NewStoreError("encode_view", err)
	}

	v.store.writeMu.Lock()
	defer v.store.writeMu.Unlock()

	err = v.store.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(viewKey(view.FocalUUID), data)
	})
	return wrapStore("save_view", err)
}

// GetSavedView returns the saved layout for a focal uuid, or a typed
// NotFound when none was ever saved.
func (v *ViewStore) GetSavedView(ctx context.Context, focal uuid.UUID) (*entities.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.NewStoreError("get_saved_view", err)
	}

	var view *entities.Context
	err := v.store.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(viewKey(focal))
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return pkgerrors.NewViewNotFoundError(focal.String())
			}
			return pkgerrors.NewStoreError("read_view", err)
		}
		return item.Value(func(val []byte) error {
			view = &entities.Context{}
			if uerr := json.Unmarshal(val, view); uerr != nil {
				return pkgerrors.NewStoreError("decode_view", uerr)
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapStore("get_saved_view", err)
	}
	return view, nil
}
