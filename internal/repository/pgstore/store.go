// Package pgstore keeps documents as JSONB rows keyed by (collection, id).
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const driverName = "postgres"

type Store struct {
	tm *TransactionManager
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{tm: NewTransactionManager(pool)}
}

func (s *Store) GetAll(ctx context.Context, collection string) (docs []domain.Document, err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "get_all", collection, "", time.Since(start), err) }()

	rows, err := s.tm.conn(ctx).Query(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`, collection)
	if err != nil {
		return nil, domain.Unavailable("pgstore get all", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, domain.Unavailable("pgstore scan", err)
		}
		data, err := decode(raw)
		if err != nil {
			// skip corrupt rows
			logger.WithContext(ctx).Warn().Err(err).Str("collection", collection).Str("doc_id", id).Msg("Skipping undecodable document")
			continue
		}
		docs = append(docs, domain.Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("pgstore rows", err)
	}
	return docs, nil
}

func (s *Store) GetOne(ctx context.Context, collection, id string) (doc *domain.Document, err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "get_one", collection, id, time.Since(start), err) }()

	data, err := s.load(ctx, collection, id, false)
	if err != nil {
		return nil, err
	}
	return &domain.Document{ID: id, Data: data}, nil
}

// UpsertMerge locks the row, merges in Go and writes the result back.
func (s *Store) UpsertMerge(ctx context.Context, collection, id string, partial map[string]any) (err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "upsert_merge", collection, id, time.Since(start), err) }()

	err = s.tm.Do(ctx, func(ctx context.Context) error {
		if _, err := s.tm.conn(ctx).Exec(ctx,
			`INSERT INTO documents (collection, id) VALUES ($1, $2) ON CONFLICT (collection, id) DO NOTHING`,
			collection, id); err != nil {
			return domain.Unavailable("pgstore insert", err)
		}

		data, err := s.load(ctx, collection, id, true)
		if err != nil {
			return err
		}
		domain.DeepMerge(data, partial)

		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("pgstore encode %s/%s: %w", collection, id, err)
		}
		if _, err := s.tm.conn(ctx).Exec(ctx,
			`UPDATE documents SET data = $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`,
			collection, id, string(raw)); err != nil {
			return domain.Unavailable("pgstore update", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrRemoteUnavailable) {
		return domain.Unavailable("pgstore upsert", err)
	}
	return err
}

func (s *Store) DeleteField(ctx context.Context, collection, id string, path domain.FieldPath) (err error) {
	start := time.Now()
	defer func() { logger.StoreOp(ctx, driverName, "delete_field", collection, id, time.Since(start), err) }()

	if len(path) == 0 {
		return nil
	}
	if _, err := s.tm.conn(ctx).Exec(ctx,
		`UPDATE documents SET data = data #- $3::text[], updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, []string(path)); err != nil {
		return domain.Unavailable("pgstore delete field", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, collection, id string, forUpdate bool) (map[string]any, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var raw []byte
	err := s.tm.conn(ctx).QueryRow(ctx, query, collection, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.Unavailable("pgstore get one", err)
	}
	return decode(raw)
}

func decode(raw []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
