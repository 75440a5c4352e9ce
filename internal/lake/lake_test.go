package lake

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockSession(t *testing.T, cfg Config) (*Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db, cfg), mock
}

func testConfig() Config {
	return Config{
		Catalog:  "meta.ducklake",
		Alias:    "my_ducklake",
		DataPath: "s3://sushi-train/lake",
	}
}

func TestAttachIssuesAttachAndUse(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectExec(`ATTACH 'ducklake:meta.ducklake' AS "my_ducklake" (DATA_PATH 's3://sushi-train/lake')`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`USE "my_ducklake"`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := session.Attach(context.Background()); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttachEscapesCatalogLiteral(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = "na'ive.ducklake"
	session, mock := newMockSession(t, cfg)

	mock.ExpectExec(`ATTACH 'ducklake:na''ive.ducklake' AS "my_ducklake" (DATA_PATH 's3://sushi-train/lake')`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`USE "my_ducklake"`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := session.Attach(context.Background()); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfigureObjectStoreEscapesQuotes(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectExec(`SET s3_access_key_id = 'minio'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET s3_secret_access_key = 'se''cret'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET s3_endpoint = 'localhost:9000'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET s3_use_ssl = false`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET s3_url_style = 'path'`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := session.ConfigureObjectStore(context.Background(), Credentials{
		AccessKeyID:     "minio",
		SecretAccessKey: "se'cret",
		Endpoint:        "localhost:9000",
		UseSSL:          false,
	})
	if err != nil {
		t.Fatalf("ConfigureObjectStore() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureMedallionSchemas(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS RAW`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS STAGED`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS CLEANED`).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := session.EnsureMedallionSchemas(context.Background()); err != nil {
		t.Fatalf("EnsureMedallionSchemas() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshExpiresAndCleans(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectExec(`CALL ducklake_expire_snapshots('my_ducklake', older_than => now())`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CALL ducklake_cleanup_old_files('my_ducklake', cleanup_all => true)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := session.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshWrapsExpireError(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectExec(`CALL ducklake_expire_snapshots('my_ducklake', older_than => now())`).
		WillReturnError(sql.ErrConnDone)

	if err := session.Refresh(context.Background()); err == nil {
		t.Fatal("expected expire error to propagate")
	}
}

func TestSnapshotCount(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	mock.ExpectQuery(`SELECT count(*) FROM ducklake_snapshots('my_ducklake')`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	count, err := session.SnapshotCount(context.Background())
	if err != nil {
		t.Fatalf("SnapshotCount() error = %v", err)
	}
	if count != 4 {
		t.Fatalf("SnapshotCount() = %d, want 4", count)
	}
}

func TestIsPostgresCatalog(t *testing.T) {
	if !isPostgresCatalog("postgres:postgres://u:p@localhost/lake") {
		t.Fatal("expected postgres catalog to be detected")
	}
	if isPostgresCatalog("meta.ducklake") {
		t.Fatal("file catalog misdetected as postgres")
	}
}
