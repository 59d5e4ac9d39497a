// Package postgres stores every collection in one JSONB table. Store order is
// the serial id, and transactions are real pgx transactions.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"clientview/internal/document"
	"clientview/internal/store"
	"clientview/pkg/platform/sentinel"
	txcontext "clientview/pkg/platform/tx"
)

// Compile-time contract assertion.
var _ store.Store = (*Store)(nil)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a document store over a pgx pool. Inside RunInTx the same type is
// bound to the open transaction and pool is nil.
type Store struct {
	db   querier
	pool *pgxpool.Pool
}

// New wraps a pool. The pool connects lazily; call Ping and Migrate once the
// database is reachable.
func New(pool *pgxpool.Pool) *Store {
	return &Store{db: pool, pool: pool}
}

// NewPool parses dsn and builds a pool without dialing.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

func (s *Store) Find(ctx context.Context, collection string, filter document.Filter) ([]document.Document, error) {
	var a args
	cond, err := where(&a, collection, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, "SELECT doc FROM documents WHERE "+cond+" ORDER BY id", a...)
	if err != nil {
		return nil, wrapErr("find "+collection, err)
	}
	defer rows.Close()

	out := []document.Document{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrapErr("scan "+collection, err)
		}
		d, err := document.Decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate "+collection, err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection string, doc document.Document) (document.Document, error) {
	stored := store.NormalizeKeys(collection, doc.Clone())
	if stored == nil {
		stored = document.Document{}
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if _, err := s.db.Exec(ctx, "INSERT INTO documents (collection, doc) VALUES ($1, $2::jsonb)", collection, raw); err != nil {
		return nil, wrapErr("insert into "+collection, err)
	}
	return stored, nil
}

// Upsert updates the first matching document or inserts filter+doc.
func (s *Store) Upsert(ctx context.Context, collection string, filter document.Filter, doc document.Document) (store.UpsertResult, error) {
	var res store.UpsertResult
	err := s.inTx(ctx, func(q querier) error {
		var a args
		cond, err := where(&a, collection, filter)
		if err != nil {
			return err
		}
		var id int64
		err = q.QueryRow(ctx, "SELECT id FROM documents WHERE "+cond+" ORDER BY id LIMIT 1 FOR UPDATE", a...).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			seeded := document.Document{}
			for k, v := range filter {
				if v != nil {
					seeded[k] = v
				}
			}
			for k, v := range doc {
				seeded[k] = v
			}
			if _, err := (&Store{db: q}).Insert(ctx, collection, seeded); err != nil {
				return err
			}
			res.Inserted = true
			return nil
		case err != nil:
			return wrapErr("select for upsert", err)
		}

		raw, err := json.Marshal(store.NormalizeKeys(collection, doc.Clone()))
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		if _, err := q.Exec(ctx, "UPDATE documents SET doc = doc || $1::jsonb WHERE id = $2", raw, id); err != nil {
			return wrapErr("update for upsert", err)
		}
		res.Matched = 1
		return nil
	})
	return res, err
}

// UpdateMany counts matched rows and rows whose document actually changed in
// a single statement.
func (s *Store) UpdateMany(ctx context.Context, collection string, filter document.Filter, update document.Update) (store.UpdateResult, error) {
	var a args
	cond, err := where(&a, collection, filter)
	if err != nil {
		return store.UpdateResult{}, err
	}
	set := store.NormalizeKeys(collection, update.Set.Clone())
	if set == nil {
		set = document.Document{}
	}
	rawSet, err := json.Marshal(set)
	if err != nil {
		return store.UpdateResult{}, fmt.Errorf("encode update: %w", err)
	}
	unset := update.Unset
	if unset == nil {
		unset = []string{}
	}
	setParam := a.add(rawSet)
	unsetParam := a.add(unset)
	next := fmt.Sprintf("((m.doc || %s::jsonb) - %s::text[])", setParam, unsetParam)

	query := `
		WITH m AS (
			SELECT id, doc FROM documents WHERE ` + cond + ` FOR UPDATE
		), u AS (
			UPDATE documents d SET doc = ` + next + `
			FROM m
			WHERE d.id = m.id AND ` + next + ` <> m.doc
			RETURNING d.id
		)
		SELECT (SELECT count(*) FROM m), (SELECT count(*) FROM u)`

	var res store.UpdateResult
	if err := s.db.QueryRow(ctx, query, a...).Scan(&res.Matched, &res.Modified); err != nil {
		return store.UpdateResult{}, wrapErr("update "+collection, err)
	}
	return res, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter document.Filter) (int64, error) {
	var a args
	cond, err := where(&a, collection, filter)
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx,
		"DELETE FROM documents WHERE id = (SELECT id FROM documents WHERE "+cond+" ORDER BY id LIMIT 1)", a...)
	if err != nil {
		return 0, wrapErr("delete one from "+collection, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteMany(ctx context.Context, collection string, filter document.Filter) (int64, error) {
	var a args
	cond, err := where(&a, collection, filter)
	if err != nil {
		return 0, err
	}
	tag, err := s.db.Exec(ctx, "DELETE FROM documents WHERE "+cond, a...)
	if err != nil {
		return 0, wrapErr("delete from "+collection, err)
	}
	return tag.RowsAffected(), nil
}

// RunInTx begins a transaction, binds a Store to it and commits when fn
// succeeds. The transaction also travels on the context passed to fn so that
// other pgx-backed stores join it. A Store already bound to a transaction runs
// fn inline.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}
	var fnErr error
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		fnErr = fn(txcontext.WithTx(ctx, tx), &Store{db: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return wrapErr("run in tx", err)
	}
	return nil
}

// inTx runs fn on the bound transaction, or on a fresh one when s is pool-backed.
func (s *Store) inTx(ctx context.Context, fn func(q querier) error) error {
	if s.pool == nil {
		return fn(s.db)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.Ping(ctx); err != nil {
		return wrapErr("ping", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// wrapErr marks everything that is not a server-side SQL error or a context
// cancellation as a connectivity failure.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
