package repositories

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"dream_build_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

func TestTokenRepositoryRevokeAndCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO token_blacklist")).
		WithArgs("jti-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("jti-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.RevokeToken(db, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	revoked, err := repo.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepositoryDeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM token_blacklist")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewTokenRepository(db).DeleteExpired(time.Now())
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 purged rows, got %d", n)
	}
}

func TestDeleteActivityNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activities WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewActivityRepository(db).DeleteActivity(db, 7)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateSchoolDuplicateName(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schools")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key", Constraint: "schools_name_key"})

	school := &models.School{Name: "Oak", PricePerDay: decimal.NewFromInt(900)}
	_, err = NewSchoolRepository(db).CreateSchool(db, school)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestDeleteSchoolReferenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schools")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "activities_school_id_fkey"})

	err = NewSchoolRepository(db).DeleteSchool(db, 1)
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestWhereBuilderPlaceholders(t *testing.T) {
	var w whereBuilder
	w.add("a.date >= $%d", "2024-01-01")
	w.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%x%")
	w.addRaw("a.employee_id IS NULL")
	got := w.clause() + w.paginate(3, 20)
	want := " WHERE a.date >= $1 AND (name ILIKE $2 OR email ILIKE $2) AND a.employee_id IS NULL LIMIT $3 OFFSET $4"
	if got != want {
		t.Fatalf("unexpected clause:\n got: %s\nwant: %s", got, want)
	}
	if len(w.args) != 4 || w.args[3] != 40 {
		t.Fatalf("unexpected args: %v", w.args)
	}
}
