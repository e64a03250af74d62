// Package memstore is an in-process document store used for local runs and tests.
package memstore

import (
	"context"
	"slices"
	"sync"

	"evalue-storefront/internal/domain"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]map[string]any
}

func New() *Store {
	return &Store{docs: make(map[string]map[string]map[string]any)}
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("memstore get all", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.docs[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Document{ID: id, Data: domain.CloneMap(coll[id])})
	}
	return out, nil
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Unavailable("memstore get one", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Document{ID: id, Data: domain.CloneMap(data)}, nil
}

func (s *Store) UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("memstore upsert", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.docs[collection]
	if !ok {
		coll = make(map[string]map[string]any)
		s.docs[collection] = coll
	}
	data, ok := coll[id]
	if !ok {
		data = make(map[string]any)
		coll[id] = data
	}
	domain.DeepMerge(data, domain.CloneMap(partial))
	return nil
}

func (s *Store) DeleteField(ctx context.Context, collection, id string, path domain.FieldPath) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable("memstore delete field", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.docs[collection][id]; ok {
		domain.DeletePath(data, path)
	}
	return nil
}
