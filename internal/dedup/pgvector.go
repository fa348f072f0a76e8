package dedup

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// PGVectorIndex implements Index on a Postgres table with the pgvector
// extension. <=> is cosine distance, so similarity is 1 - distance.
type PGVectorIndex struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPGVector connects to Postgres and ensures the corpus schema
// exists. dims fixes the vector column width and must match the
// embedding provider.
func NewPGVector(ctx context.Context, dsn string, dims int) (*PGVectorIndex, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: connect: %w", err)
	}

	idx := &PGVectorIndex{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := idx.ensureSchema(ctx, dims); err != nil {
		pool.Close()
		return nil, err
	}
	return idx, nil
}

func (p *PGVectorIndex) ensureSchema(ctx context.Context, dims int) error {
	if _, err := p.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pgvector: create extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS corpus_entries (
			id          uuid PRIMARY KEY,
			topic_id    text NOT NULL,
			embedding   vector(%d) NOT NULL,
			accepted_at timestamptz NOT NULL
		)`, dims)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}
	return nil
}

func (p *PGVectorIndex) Nearest(ctx context.Context, vec []float32) (float64, error) {
	var sim float64
	err := p.pool.QueryRow(ctx,
		"SELECT 1 - (embedding <=> $1) FROM corpus_entries ORDER BY embedding <=> $1 LIMIT 1",
		pgvector.NewVector(vec),
	).Scan(&sim)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("pgvector: nearest: %w", err)
	}
	return sim, nil
}

func (p *PGVectorIndex) Append(ctx context.Context, e Entry) error {
	query, args, err := p.sb.
		Insert("corpus_entries").
		Columns("id", "topic_id", "embedding", "accepted_at").
		Values(e.ID, e.TopicID, pgvector.NewVector(e.Embedding), e.AcceptedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("pgvector: build insert: %w", err)
	}

	if _, err := p.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("pgvector: append: %w", err)
	}
	return nil
}

func (p *PGVectorIndex) Len(ctx context.Context) (int, error) {
	query, args, err := p.sb.Select("COUNT(*)").From("corpus_entries").ToSql()
	if err != nil {
		return 0, fmt.Errorf("pgvector: build count: %w", err)
	}

	var n int
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return n, nil
}

func (p *PGVectorIndex) Close() error {
	p.pool.Close()
	return nil
}
