package repository

import (
	"context"
	"fmt"

	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/ports"
)

// SnapshotRepositoryImpl implements the SnapshotRepository interface on top
// of the store's backup tree
type SnapshotRepositoryImpl struct {
	store       *csvstore.Store
	collections map[string]csvstore.Collection
	names       []string
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(store *csvstore.Store) ports.SnapshotRepository {
	r := &SnapshotRepositoryImpl{
		store:       store,
		collections: make(map[string]csvstore.Collection),
	}
	for _, c := range Collections(store) {
		r.collections[c.Name] = c
		r.names = append(r.names, c.Name)
	}
	return r
}

func (r *SnapshotRepositoryImpl) Collections() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *SnapshotRepositoryImpl) List(ctx context.Context, collection string) ([]csvstore.Snapshot, error) {
	c, err := r.lookup(collection)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.Backups().List(c)
}

func (r *SnapshotRepositoryImpl) Restore(ctx context.Context, collection, name string) error {
	c, err := r.lookup(collection)
	if err != nil {
		return err
	}
	return r.store.Backups().Restore(ctx, c, name)
}

func (r *SnapshotRepositoryImpl) Prune(ctx context.Context, collection string, keep int) ([]string, error) {
	c, err := r.lookup(collection)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.store.Backups().Prune(c, keep)
}

func (r *SnapshotRepositoryImpl) Verify(ctx context.Context, collection, name string) (int, error) {
	c, err := r.lookup(collection)
	if err != nil {
		return 0, err
	}
	rows, err := r.store.Backups().ReadSnapshot(ctx, c, name)
	if err != nil {
		return 0, err
	}
	check := strictDecoders[c.Name]
	for i, row := range rows {
		if err := check(row); err != nil {
			return i, fmt.Errorf("%s row %d (id %q): %w", name, i+1, row["id"], err)
		}
	}
	return len(rows), nil
}

func (r *SnapshotRepositoryImpl) lookup(collection string) (csvstore.Collection, error) {
	c, ok := r.collections[collection]
	if !ok {
		return csvstore.Collection{}, fmt.Errorf("unknown collection %q", collection)
	}
	return c, nil
}
