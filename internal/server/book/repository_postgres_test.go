package book

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

var bookRowColumns = []string{"id", "title", "author", "publisher", "published_year", "language", "pages", "price", "category", "description", "image"}

func TestPostgresList_PassesFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(bookRowColumns).
		AddRow(1, "Laskar Pelangi", "Andrea Hirata", "Bentang", 2005, "Indonesia", 529, "89000.00", "Novel", nil, "books/a.jpg")
	mock.ExpectQuery("FROM books").WithArgs("Laskar", "Novel").WillReturnRows(rows)

	books, err := repo.List(Filter{Search: " Laskar ", Category: "Novel"})
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}
	b := books[0]
	if b.Category.Name != "Novel" || b.Category.Slug != "novel" || b.Pages != 529 || !b.Price.Equal(decimal.NewFromInt(89000)) {
		t.Fatalf("unexpected book %+v", b)
	}
	if b.Description != "" {
		t.Fatalf("NULL description should scan as empty, got %q", b.Description)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM books WHERE id").WithArgs(9).WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByID(9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectExec("DELETE FROM books").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(9); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresCountByCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("GROUP BY category").WillReturnRows(
		sqlmock.NewRows([]string{"category", "count"}).AddRow("Novel", 3).AddRow("Sejarah ", 1))

	counts, err := repo.CountByCategory()
	if err != nil {
		t.Fatal(err)
	}
	if counts["Novel"] != 3 || counts["Sejarah"] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
