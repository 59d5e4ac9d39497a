// Package memory provides an in-process document store. It keeps insertion
// order per collection and implements transactions by snapshot and restore
// under a single writer lock.
package memory

import (
	"context"
	"sync"

	"clientview/internal/document"
	"clientview/internal/store"
)

// Compile-time contract assertion.
var _ store.Store = (*Store)(nil)

// Store holds collections in memory. The zero value is not usable; call New.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]document.Document
	closed      bool
}

// New returns an empty store.
func New() *Store {
	return &Store{collections: make(map[string][]document.Document)}
}

func (s *Store) Find(_ context.Context, collection string, filter document.Filter) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return (&view{s: s}).find(collection, filter), nil
}

func (s *Store) Insert(_ context.Context, collection string, doc document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{s: s}).insert(collection, doc), nil
}

func (s *Store) Upsert(_ context.Context, collection string, filter document.Filter, doc document.Document) (store.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{s: s}).upsert(collection, filter, doc), nil
}

func (s *Store) UpdateMany(_ context.Context, collection string, filter document.Filter, update document.Update) (store.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{s: s}).updateMany(collection, filter, update), nil
}

func (s *Store) DeleteOne(_ context.Context, collection string, filter document.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{s: s}).delete(collection, filter, 1), nil
}

func (s *Store) DeleteMany(_ context.Context, collection string, filter document.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&view{s: s}).delete(collection, filter, -1), nil
}

// RunInTx holds the writer lock for the whole of fn and restores the previous
// contents when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx, &txStore{view: &view{s: s}}); err != nil {
		s.collections = snapshot
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

func (s *Store) snapshot() map[string][]document.Document {
	out := make(map[string][]document.Document, len(s.collections))
	for name, docs := range s.collections {
		cp := make([]document.Document, len(docs))
		for i, d := range docs {
			cp[i] = d.Clone()
		}
		out[name] = cp
	}
	return out
}

// view implements the collection operations; callers hold the appropriate lock.
type view struct {
	s *Store
}

func (v *view) find(collection string, filter document.Filter) []document.Document {
	out := []document.Document{}
	for _, d := range v.s.collections[collection] {
		if filter.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out
}

func (v *view) insert(collection string, doc document.Document) document.Document {
	stored := store.NormalizeKeys(collection, doc.Clone())
	if stored == nil {
		stored = document.Document{}
	}
	v.s.collections[collection] = append(v.s.collections[collection], stored)
	return stored.Clone()
}

func (v *view) upsert(collection string, filter document.Filter, doc document.Document) store.UpsertResult {
	docs := v.s.collections[collection]
	for _, d := range docs {
		if filter.Matches(d) {
			document.Update{Set: doc}.Apply(d)
			store.NormalizeKeys(collection, d)
			return store.UpsertResult{Matched: 1}
		}
	}
	seeded := document.Document{}
	for k, val := range filter {
		if val != nil {
			seeded[k] = val
		}
	}
	for k, val := range doc {
		seeded[k] = val
	}
	v.insert(collection, seeded)
	return store.UpsertResult{Inserted: true}
}

func (v *view) updateMany(collection string, filter document.Filter, update document.Update) store.UpdateResult {
	var res store.UpdateResult
	for _, d := range v.s.collections[collection] {
		if !filter.Matches(d) {
			continue
		}
		res.Matched++
		if update.Apply(d) {
			res.Modified++
		}
		store.NormalizeKeys(collection, d)
	}
	return res
}

// delete removes up to limit matching documents; a negative limit removes all.
func (v *view) delete(collection string, filter document.Filter, limit int) int64 {
	docs := v.s.collections[collection]
	kept := docs[:0]
	var removed int64
	for _, d := range docs {
		if (limit < 0 || removed < int64(limit)) && filter.Matches(d) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	for i := len(kept); i < len(docs); i++ {
		docs[i] = nil
	}
	v.s.collections[collection] = kept
	return removed
}

// txStore exposes the view to a RunInTx callback without re-acquiring locks.
type txStore struct {
	view *view
}

func (t *txStore) Find(_ context.Context, collection string, filter document.Filter) ([]document.Document, error) {
	return t.view.find(collection, filter), nil
}

func (t *txStore) Insert(_ context.Context, collection string, doc document.Document) (document.Document, error) {
	return t.view.insert(collection, doc), nil
}

func (t *txStore) Upsert(_ context.Context, collection string, filter document.Filter, doc document.Document) (store.UpsertResult, error) {
	return t.view.upsert(collection, filter, doc), nil
}

func (t *txStore) UpdateMany(_ context.Context, collection string, filter document.Filter, update document.Update) (store.UpdateResult, error) {
	return t.view.updateMany(collection, filter, update), nil
}

func (t *txStore) DeleteOne(_ context.Context, collection string, filter document.Filter) (int64, error) {
	return t.view.delete(collection, filter, 1), nil
}

func (t *txStore) DeleteMany(_ context.Context, collection string, filter document.Filter) (int64, error) {
	return t.view.delete(collection, filter, -1), nil
}

// RunInTx on a transactional view joins the enclosing transaction.
func (t *txStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

func (t *txStore) Ping(ctx context.Context) error { return ctx.Err() }

func (t *txStore) Close() {}
