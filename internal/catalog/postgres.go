package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and migrates.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(stdlib.OpenDBFromPool(pool), "postgres"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the connection pool for health checks.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Save(ctx context.Context, rec *Record) error {
	stamp(rec)

	err := s.pool.QueryRow(ctx, `
		INSERT INTO images (parent_id, original_name, filename, file_size, format,
			original_width, original_height, resized_width, resized_height,
			quality, target_kb, converged, search_iterations, upload_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		rec.ParentID, rec.OriginalName, rec.Filename, rec.FileSize, rec.Format,
		rec.OriginalWidth, rec.OriginalHeight, rec.ResizedWidth, rec.ResizedHeight,
		rec.Quality, rec.TargetKB, rec.Converged, rec.SearchIterations, rec.UploadDate,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, id int64) (*Record, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recordColumns+` FROM images WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query image %d: %w", id, err)
	}

	rec, err := pgx.CollectExactlyOneRow(rows, scanPgRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query image %d: %w", id, err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM images ORDER BY upload_date DESC, id DESC`)
}

func (s *PostgresStore) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM images WHERE upload_date < $1 ORDER BY upload_date DESC, id DESC`, cutoff)
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*Record, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}

	out, err := pgx.CollectRows(rows, scanPgRecord)
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPgRecord(row pgx.CollectableRow) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.ParentID, &rec.OriginalName, &rec.Filename, &rec.FileSize, &rec.Format,
		&rec.OriginalWidth, &rec.OriginalHeight, &rec.ResizedWidth, &rec.ResizedHeight,
		&rec.Quality, &rec.TargetKB, &rec.Converged, &rec.SearchIterations, &rec.UploadDate)
	if err != nil {
		return nil, err
	}
	rec.UploadDate = rec.UploadDate.UTC()
	return &rec, nil
}
