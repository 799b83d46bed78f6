package store

import (
	"context"
	"errors"
)

// ErrCorrupt indicates the backing content exists but is not a well-formed
// record document.
var ErrCorrupt = errors.New("record store: corrupt data")

// Store is the record-store contract: whole-document reads and writes over
// the Users/Applications aggregate. Save rewrites the entire backing content;
// there is no partial update.
//
// Update runs a read-modify-write cycle serialized against all other Update
// calls on the same store, so two concurrent mutations cannot drop each
// other's additions.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Update(ctx context.Context, fn func(*Snapshot) error) error
}
