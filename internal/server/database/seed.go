package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-storefront/internal/model"
	"github.com/wichananm65/bookstore-storefront/internal/server/book"
	"github.com/wichananm65/bookstore-storefront/internal/server/category"
)

// Account is a development login created on start.
type Account struct {
	User     model.User
	Password string
}

var Accounts = []Account{
	{User: model.User{Name: "Admin TokoBuku", Email: "admin@tokobuku.test", Role: model.RoleAdmin}, Password: "admin12345"},
	{User: model.User{Name: "Budi Santoso", Email: "budi@tokobuku.test", Role: model.RoleCustomer}, Password: "budi12345"},
}

var Categories = []category.Row{
	{ID: 1, Name: "Fiksi", Slug: "fiksi"},
	{ID: 2, Name: "Non-Fiksi", Slug: "non-fiksi"},
	{ID: 3, ParentID: 1, Name: "Novel", Slug: "novel"},
	{ID: 4, ParentID: 2, Name: "Sejarah", Slug: "sejarah"},
	{ID: 5, ParentID: 2, Name: "Filosofi", Slug: "filosofi"},
	{ID: 6, ParentID: 2, Name: "Pendidikan", Slug: "pendidikan"},
	{ID: 7, ParentID: 2, Name: "Biografi", Slug: "biografi"},
	{ID: 8, ParentID: 2, Name: "Teknologi", Slug: "teknologi"},
}

// Books returns the starter catalog with ids assigned in order.
func Books() []model.Book {
	b := func(id int, title, author, publisher string, year, pages int, price int64, cat, lang string) model.Book {
		return model.Book{
			ID: id, Title: title, Author: author, Publisher: publisher,
			PublishedYear: year, Pages: pages, Language: lang,
			Price: decimal.NewFromInt(price), Category: book.CategoryOf(cat),
		}
	}
	return []model.Book{
		b(1, "Laskar Pelangi", "Andrea Hirata", "Bentang Pustaka", 2005, 529, 89000, "Novel", "Indonesia"),
		b(2, "Bumi Manusia", "Pramoedya Ananta Toer", "Lentera Dipantara", 1980, 535, 132000, "Novel", "Indonesia"),
		b(3, "Cantik Itu Luka", "Eka Kurniawan", "Gramedia Pustaka Utama", 2002, 505, 125000, "Novel", "Indonesia"),
		b(4, "Sapiens", "Yuval Noah Harari", "KPG", 2011, 512, 150000, "Sejarah", "Indonesia"),
		b(5, "Sejarah Indonesia Modern", "M.C. Ricklefs", "Serambi", 2008, 800, 175000, "Sejarah", "Indonesia"),
		b(6, "Filosofi Teras", "Henry Manampiring", "Kompas", 2018, 346, 98000, "Filosofi", "Indonesia"),
		b(7, "Dunia Sophie", "Jostein Gaarder", "Mizan", 1991, 798, 119000, "Filosofi", "Indonesia"),
		b(8, "Pendidikan Kaum Tertindas", "Paulo Freire", "LP3ES", 1970, 236, 75000, "Pendidikan", "Indonesia"),
		b(9, "Habibie & Ainun", "B.J. Habibie", "THC Mandiri", 2010, 323, 95000, "Biografi", "Indonesia"),
		b(10, "Steve Jobs", "Walter Isaacson", "Simon & Schuster", 2011, 656, 210000, "Biografi", "English"),
		b(11, "Clean Code", "Robert C. Martin", "Prentice Hall", 2008, 464, 450000, "Teknologi", "English"),
	}
}

const (
	countCategoriesQuery = `SELECT COUNT(*) FROM categories`
	insertCategoryQuery  = `INSERT INTO categories (id, parent_id, name, slug) VALUES ($1, NULLIF($2, 0), $3, $4)`
	resetCategorySeq     = `SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT MAX(id) FROM categories))`
)

// SeedCategories inserts the category tree into an empty table.
func SeedCategories(ctx context.Context, db *sql.DB, rows []category.Row) error {
	var n int
	if err := db.QueryRowContext(ctx, countCategoriesQuery).Scan(&n); err != nil {
		return errors.Wrap(err, "count categories")
	}
	if n > 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, insertCategoryQuery, r.ID, r.ParentID, r.Name, r.Slug); err != nil {
			return errors.Wrapf(err, "insert category %q", r.Name)
		}
	}
	if _, err := tx.ExecContext(ctx, resetCategorySeq); err != nil {
		return errors.Wrap(err, "reset category sequence")
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// SeedBooks fills an empty catalog. Ids of the seed are ignored.
func SeedBooks(repo book.Repository, books []model.Book) error {
	n, err := repo.Count()
	if err != nil {
		return errors.Wrap(err, "count books")
	}
	if n > 0 {
		return nil
	}
	for _, b := range books {
		if _, err := repo.Create(b); err != nil {
			return errors.Wrapf(err, "insert book %q", b.Title)
		}
	}
	return nil
}
