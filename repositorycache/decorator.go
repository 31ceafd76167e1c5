package repositorycache

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-storefront/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned by GetByID when no row has the id.
var ErrNotFound = errors.New("repositorycache: record not found")

// Entity decorates a base repository with a cache of single-record lookups.
// GetByID reads through resource:{kind}:{id}; Update and Delete drop that key
// once the base call succeeded. Every other method, including the Tx variants,
// goes straight to the base repository.
type Entity[T any] struct {
	repository.Repository[T]
	kind  string
	aside *cache.Aside
}

// New wraps base. A nil aside disables caching and GetByID always queries the
// base repository.
func New[T any](base repository.Repository[T], aside *cache.Aside, kind string) *Entity[T] {
	return &Entity[T]{Repository: base, kind: kind, aside: aside}
}

// Key is the cache key of the record with id.
func (e *Entity[T]) Key(id string) string {
	return cache.ResourceKey(e.kind, id)
}

// GetByID returns the record with id. criteria are only applied on a miss, so
// they must not change which record is returned.
func (e *Entity[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	load := func(ctx context.Context) (T, error) {
		return e.load(ctx, id, criteria)
	}
	if e.aside == nil {
		return load(ctx)
	}
	return cache.ReadThrough(ctx, e.aside, e.Key(id), load)
}

func (e *Entity[T]) load(ctx context.Context, id string, criteria []repository.SelectCriteria) (T, error) {
	var zero T
	criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", id).Limit(1)
	})
	records, _, err := e.Repository.List(ctx, criteria...)
	if err != nil {
		return zero, err
	}
	if len(records) == 0 {
		return zero, fmt.Errorf("%s %s: %w", e.kind, id, ErrNotFound)
	}
	return records[0], nil
}

func (e *Entity[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	updated, err := e.Repository.Update(ctx, record, criteria...)
	if err != nil {
		return updated, err
	}
	e.forgetRecord(ctx, record)
	return updated, nil
}

func (e *Entity[T]) Delete(ctx context.Context, record T) error {
	if err := e.Repository.Delete(ctx, record); err != nil {
		return err
	}
	e.forgetRecord(ctx, record)
	return nil
}

// Forget drops the cached records with ids. Callers that changed rows inside a
// transaction call it after the commit.
func (e *Entity[T]) Forget(ctx context.Context, ids ...uuid.UUID) {
	if e.aside == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, e.Key(id.String()))
	}
	e.aside.Invalidate(ctx, keys...)
}

func (e *Entity[T]) forgetRecord(ctx context.Context, record T) {
	getID := e.Handlers().GetID
	if getID == nil {
		return
	}
	e.Forget(ctx, getID(record))
}
