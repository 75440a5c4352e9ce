package lake

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecScriptsRunsInOrder(t *testing.T) {
	session, mock := newMockSession(t, testConfig())

	fsys := fstest.MapFS{
		"sql/01_staged.sql":  {Data: []byte("CREATE OR REPLACE TABLE STAGED.ORDERS AS SELECT * FROM RAW.ORDERS")},
		"sql/02_cleaned.sql": {Data: []byte("CREATE OR REPLACE TABLE CLEANED.ORDERS AS SELECT * FROM STAGED.ORDERS WHERE _record_id IS NOT NULL")},
	}

	mock.ExpectExec(`CREATE OR REPLACE TABLE STAGED.ORDERS AS SELECT * FROM RAW.ORDERS`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE OR REPLACE TABLE CLEANED.ORDERS AS SELECT * FROM STAGED.ORDERS WHERE _record_id IS NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := session.ExecScripts(context.Background(), fsys, []string{"sql/01_staged.sql", "sql/02_cleaned.sql"})
	if err != nil {
		t.Fatalf("ExecScripts() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExecScriptsMissingFile(t *testing.T) {
	session, _ := newMockSession(t, testConfig())

	err := session.ExecScripts(context.Background(), fstest.MapFS{}, []string{"sql/absent.sql"})
	if err == nil {
		t.Fatal("expected missing script error")
	}
	if !strings.Contains(err.Error(), "sql/absent.sql") {
		t.Fatalf("error should name the script path, got %v", err)
	}
}

func TestExecScriptsRejectsEmptyScript(t *testing.T) {
	session, _ := newMockSession(t, testConfig())

	fsys := fstest.MapFS{"sql/empty.sql": {Data: []byte("  \n\t")}}
	if err := session.ExecScripts(context.Background(), fsys, []string{"sql/empty.sql"}); err == nil {
		t.Fatal("expected empty script error")
	}
}
