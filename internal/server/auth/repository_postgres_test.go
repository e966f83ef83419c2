package auth

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

func TestPostgresGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "password_hash"}).
		AddRow(3, "Siti", "siti@example.com", "customer", "$2a$hash")
	mock.ExpectQuery("FROM users").WithArgs("siti@example.com").WillReturnRows(rows)
	mock.ExpectQuery("FROM users").WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

	a, err := repo.GetByEmail(" siti@example.com ")
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if a.ID != 3 || a.Role != model.RoleCustomer || a.PasswordHash != "$2a$hash" {
		t.Fatalf("unexpected account %+v", a)
	}
	if _, err := repo.GetByEmail("ghost@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCreate_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Siti", "siti@example.com", "customer", "h").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	a, err := repo.Create(Account{User: model.User{Name: "Siti", Email: "siti@example.com", Role: model.RoleCustomer}, PasswordHash: "h"})
	if err != nil || a.ID != 11 {
		t.Fatalf("expected id 11, got %+v %v", a, err)
	}
	if _, err := repo.Create(Account{User: model.User{Name: "Siti", Email: "siti@example.com", Role: model.RoleCustomer}, PasswordHash: "h"}); err != ErrEmailExists {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
