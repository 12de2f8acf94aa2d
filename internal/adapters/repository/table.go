package repository

import (
	"context"
	"fmt"

	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
)

// table is the read-modify-write cycle shared by the entity repositories.
// Updates and deletes work on raw rows, so records that are not touched are
// written back exactly as they were read.
type table[T any] struct {
	store    *csvstore.Store
	coll     csvstore.Collection
	logger   *logger.Logger
	notFound error
	idOf     func(*T) string
	encode   func(*T) csvstore.Row
	decode   func(csvstore.Row) *T
}

func (t *table[T]) list(ctx context.Context) ([]*T, error) {
	rows, err := t.store.ReadAll(ctx, t.coll)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.coll.Name, err)
	}
	out := make([]*T, 0, len(rows))
	for _, row := range rows {
		out = append(out, t.decode(row))
	}
	return out, nil
}

func (t *table[T]) get(ctx context.Context, id string) (*T, error) {
	rows, err := t.store.ReadAll(ctx, t.coll)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", t.coll.Name, err)
	}
	for _, row := range rows {
		if row["id"] == id {
			return t.decode(row), nil
		}
	}
	return nil, t.notFound
}

func (t *table[T]) create(ctx context.Context, v *T) error {
	res, err := t.store.Append(ctx, t.coll, t.encode(v))
	if err != nil {
		return fmt.Errorf("create %s: %w", t.coll.Name, err)
	}
	t.logWrite("append", res)
	return nil
}

// update replaces the first row carrying the entity's id
func (t *table[T]) update(ctx context.Context, v *T) error {
	rows, err := t.store.ReadAll(ctx, t.coll)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.coll.Name, err)
	}
	id := t.idOf(v)
	idx := -1
	for i, row := range rows {
		if row["id"] == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return t.notFound
	}
	rows[idx] = t.encode(v)

	res, err := t.store.Overwrite(ctx, t.coll, rows)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.coll.Name, err)
	}
	t.logWrite("overwrite", res)
	return nil
}

// delete removes every row carrying id and keeps the rest in order
func (t *table[T]) delete(ctx context.Context, id string) error {
	rows, err := t.store.ReadAll(ctx, t.coll)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.coll.Name, err)
	}
	kept := make([]csvstore.Row, 0, len(rows))
	for _, row := range rows {
		if row["id"] != id {
			kept = append(kept, row)
		}
	}
	if len(kept) == len(rows) {
		return t.notFound
	}

	res, err := t.store.Overwrite(ctx, t.coll, kept)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.coll.Name, err)
	}
	t.logWrite("overwrite", res)
	return nil
}

func (t *table[T]) logWrite(op string, res csvstore.WriteResult) {
	snapshot := ""
	if res.Snapshot != nil {
		snapshot = res.Snapshot.Name
	}
	t.logger.LogStoreWrite(t.coll.Name, op, snapshot, res.BackupErr)
}
