package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var _ Store = (*SQLiteStore)(nil)

const recordColumns = `id, parent_id, original_name, filename, file_size, format,
	original_width, original_height, resized_width, resized_height,
	quality, target_kb, converged, search_iterations, upload_date`

// SQLiteStore implements Store on a single SQLite file. Upload dates are
// stored as unix microseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db, "sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	stamp(rec)

	var parent sql.NullInt64
	if rec.ParentID != nil {
		parent = sql.NullInt64{Int64: *rec.ParentID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO images (parent_id, original_name, filename, file_size, format,
			original_width, original_height, resized_width, resized_height,
			quality, target_kb, converged, search_iterations, upload_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		parent, rec.OriginalName, rec.Filename, rec.FileSize, rec.Format,
		rec.OriginalWidth, rec.OriginalHeight, rec.ResizedWidth, rec.ResizedHeight,
		rec.Quality, rec.TargetKB, rec.Converged, rec.SearchIterations, rec.UploadDate.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("insert image: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert image id: %w", err)
	}
	rec.ID = id
	return nil
}

func (s *SQLiteStore) Find(ctx context.Context, id int64) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM images WHERE id = ?`, id)

	rec, err := scanSQLRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query image %d: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM images ORDER BY upload_date DESC, id DESC`)
}

func (s *SQLiteStore) ListOlderThan(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM images WHERE upload_date < ? ORDER BY upload_date DESC, id DESC`,
		cutoff.UTC().UnixMicro())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanSQLRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLRecord(row rowScanner) (*Record, error) {
	var (
		rec    Record
		parent sql.NullInt64
		micros int64
	)

	err := row.Scan(&rec.ID, &parent, &rec.OriginalName, &rec.Filename, &rec.FileSize, &rec.Format,
		&rec.OriginalWidth, &rec.OriginalHeight, &rec.ResizedWidth, &rec.ResizedHeight,
		&rec.Quality, &rec.TargetKB, &rec.Converged, &rec.SearchIterations, &micros)
	if err != nil {
		return nil, err
	}

	if parent.Valid {
		p := parent.Int64
		rec.ParentID = &p
	}
	rec.UploadDate = time.UnixMicro(micros).UTC()
	return &rec, nil
}
