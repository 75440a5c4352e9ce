// Package lake manages a DuckDB session with the DuckLake and httpfs
// extensions, and the SQL orchestration around it: catalog attachment,
// object-store credentials, medallion schemas, ingest and snapshot refresh.
package lake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// MedallionSchemas are created by EnsureMedallionSchemas, in this order.
var MedallionSchemas = []string{"RAW", "STAGED", "CLEANED"}

type Config struct {
	// Catalog is a DuckLake catalog file path, or "postgres:<dsn>" for a
	// Postgres-backed catalog.
	Catalog       string
	Alias         string
	DataPath      string
	MaxMemoryGB   int
	AttachTimeout time.Duration
}

// Credentials configure session-level S3 access for the lake data path.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UseSSL          bool
}

// Session owns an in-memory DuckDB connection. It is safe for concurrent
// use to the extent database/sql is; the SQL it issues is plain DDL/DML
// with no state beyond the attached catalog.
type Session struct {
	db  *sql.DB
	cfg Config
}

// Open creates an in-memory DuckDB connection and loads the ducklake and
// httpfs extensions. The catalog is not attached until Attach is called.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if strings.TrimSpace(cfg.Catalog) == "" {
		return nil, fmt.Errorf("lake catalog is required")
	}
	if strings.TrimSpace(cfg.Alias) == "" {
		return nil, fmt.Errorf("lake alias is required")
	}
	if strings.TrimSpace(cfg.DataPath) == "" {
		return nil, fmt.Errorf("lake data path is required")
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	session := &Session{db: db, cfg: cfg}
	if err := session.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return session, nil
}

// NewWithDB wraps an existing connection. Used by tests and by callers that
// manage the DuckDB handle themselves; bootstrap is skipped.
func NewWithDB(db *sql.DB, cfg Config) *Session {
	return &Session{db: db, cfg: cfg}
}

func (s *Session) Close() error {
	return s.db.Close()
}

func (s *Session) bootstrap(ctx context.Context) error {
	if s.cfg.MaxMemoryGB > 0 {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("SET max_memory='%dGB'", s.cfg.MaxMemoryGB)); err != nil {
			return fmt.Errorf("set max_memory: %w", err)
		}
	}
	extensions := []string{
		"INSTALL ducklake; LOAD ducklake;",
		"INSTALL httpfs; LOAD httpfs;",
	}
	for _, ext := range extensions {
		if _, err := s.db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("extension setup (%s): %w", ext, err)
		}
	}
	return nil
}

// Attach attaches the DuckLake catalog under the configured alias and makes
// it the session default. Postgres-backed catalogs are preflighted with a
// direct ping so a bad DSN fails with a clearer error than the extension
// produces.
func (s *Session) Attach(ctx context.Context) error {
	if isPostgresCatalog(s.cfg.Catalog) {
		if err := pingPostgresCatalog(ctx, s.cfg.Catalog, s.cfg.AttachTimeout); err != nil {
			return err
		}
	}

	attachSQL := fmt.Sprintf(
		"ATTACH %s AS %s (DATA_PATH %s)",
		quoteLiteral("ducklake:"+s.cfg.Catalog),
		quoteIdent(s.cfg.Alias),
		quoteLiteral(s.cfg.DataPath),
	)
	if _, err := s.db.ExecContext(ctx, attachSQL); err != nil {
		return fmt.Errorf("attach ducklake catalog: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "USE "+quoteIdent(s.cfg.Alias)); err != nil {
		return fmt.Errorf("use lake alias %q: %w", s.cfg.Alias, err)
	}
	return nil
}

// ConfigureObjectStore sets session-level S3 credentials so httpfs and
// DuckLake can reach the MinIO data path. Path-style URLs are forced; MinIO
// does not serve virtual-hosted buckets out of the box.
func (s *Session) ConfigureObjectStore(ctx context.Context, creds Credentials) error {
	statements := []string{
		"SET s3_access_key_id = " + quoteLiteral(creds.AccessKeyID),
		"SET s3_secret_access_key = " + quoteLiteral(creds.SecretAccessKey),
		"SET s3_endpoint = " + quoteLiteral(creds.Endpoint),
		fmt.Sprintf("SET s3_use_ssl = %t", creds.UseSSL),
		"SET s3_url_style = 'path'",
	}
	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("configure object store: %w", err)
		}
	}
	return nil
}

// EnsureMedallionSchemas creates the RAW, STAGED and CLEANED schemas if they
// do not exist.
func (s *Session) EnsureMedallionSchemas(ctx context.Context) error {
	for _, schema := range MedallionSchemas {
		if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	return nil
}

// Refresh expires all snapshots older than now and removes files no
// snapshot references anymore.
func (s *Session) Refresh(ctx context.Context) error {
	expireSQL := fmt.Sprintf("CALL ducklake_expire_snapshots(%s, older_than => now())", quoteLiteral(s.cfg.Alias))
	if _, err := s.db.ExecContext(ctx, expireSQL); err != nil {
		return fmt.Errorf("expire snapshots: %w", err)
	}
	cleanupSQL := fmt.Sprintf("CALL ducklake_cleanup_old_files(%s, cleanup_all => true)", quoteLiteral(s.cfg.Alias))
	if _, err := s.db.ExecContext(ctx, cleanupSQL); err != nil {
		return fmt.Errorf("cleanup old files: %w", err)
	}
	return nil
}

// SnapshotCount reports the number of snapshots the attached catalog holds.
func (s *Session) SnapshotCount(ctx context.Context) (int64, error) {
	countSQL := fmt.Sprintf("SELECT count(*) FROM ducklake_snapshots(%s)", quoteLiteral(s.cfg.Alias))
	var count int64
	if err := s.db.QueryRowContext(ctx, countSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
