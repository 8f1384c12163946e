package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestApplySchemaSkipsEmptyPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if err := applySchema(db, ""); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}

func TestApplySchemaExecutesFile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte("CREATE TABLE IF NOT EXISTS t (id INT);"), 0o600); err != nil {
		t.Fatal(err)
	}
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS t").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := applySchema(db, path); err != nil {
		t.Fatalf("applySchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestApplySchemaReportsFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if err := applySchema(db, filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Fatalf("expected read error")
	}

	path := filepath.Join(t.TempDir(), "schema.sql")
	if err := os.WriteFile(path, []byte("BROKEN"), 0o600); err != nil {
		t.Fatal(err)
	}
	mock.ExpectExec("BROKEN").WillReturnError(errors.New("syntax error"))
	if err := applySchema(db, path); err == nil {
		t.Fatalf("expected exec error")
	}
}
