package book

import (
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const bookColumns = `id, title, author, publisher, published_year, language, pages, price, category, description, image`

const (
	listBooksQuery = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE ($1 = '' OR title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR lower(category) = lower($2))
		ORDER BY id DESC
	`
	getBookByIDQuery = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	listBooksByIDs   = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = ANY($1::int[])
		ORDER BY array_position($1::int[], id)
	`
	insertBookQuery = `
		INSERT INTO books (title, author, publisher, published_year, language, pages, price, category, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING id
	`
	updateBookQuery = `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, published_year = $4, language = $5,
			pages = $6, price = $7, category = $8, description = $9,
			image = COALESCE(NULLIF($10, ''), image), updated_at = now()
		WHERE id = $11
	`
	deleteBookQuery         = `DELETE FROM books WHERE id = $1`
	countBooksQuery         = `SELECT COUNT(*) FROM books`
	countBooksCategoryQuery = `SELECT category, COUNT(*) FROM books GROUP BY category`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(f Filter) ([]model.Book, error) {
	return r.query(listBooksQuery, strings.TrimSpace(f.Search), strings.TrimSpace(f.Category))
}

func (r *PostgresRepository) ListByIDs(ids []int) ([]model.Book, error) {
	if len(ids) == 0 {
		return []model.Book{}, nil
	}
	return r.query(listBooksByIDs, pq.Array(ids))
}

func (r *PostgresRepository) query(q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *PostgresRepository) GetByID(id int) (model.Book, error) {
	b, err := scanBook(r.db.QueryRow(getBookByIDQuery, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Book{}, ErrNotFound
		}
		return model.Book{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Create(b model.Book) (model.Book, error) {
	err := r.db.QueryRow(insertBookQuery,
		b.Title, b.Author, b.Publisher, b.PublishedYear, b.Language,
		b.Pages, b.Price, b.Category.Name, b.Description, b.Image,
	).Scan(&b.ID)
	if err != nil {
		return model.Book{}, err
	}
	return b, nil
}

func (r *PostgresRepository) Update(id int, b model.Book) (model.Book, error) {
	result, err := r.db.Exec(updateBookQuery,
		b.Title, b.Author, b.Publisher, b.PublishedYear, b.Language,
		b.Pages, b.Price, b.Category.Name, b.Description, b.Image, id,
	)
	if err != nil {
		return model.Book{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Book{}, err
	}
	if affected == 0 {
		return model.Book{}, ErrNotFound
	}
	return r.GetByID(id)
}

func (r *PostgresRepository) Delete(id int) error {
	result, err := r.db.Exec(deleteBookQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(countBooksQuery).Scan(&n)
	return n, err
}

func (r *PostgresRepository) CountByCategory() (map[string]int, error) {
	rows, err := r.db.Query(countBooksCategoryQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[strings.TrimSpace(name)] += n
	}
	return out, rows.Err()
}

func scanBook(s rowScanner) (model.Book, error) {
	var (
		b           model.Book
		publisher   sql.NullString
		year        sql.NullInt64
		language    sql.NullString
		pages       sql.NullInt64
		category    string
		description sql.NullString
		image       sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Title, &b.Author, &publisher, &year, &language, &pages, &b.Price, &category, &description, &image); err != nil {
		return model.Book{}, err
	}
	b.Publisher = publisher.String
	b.PublishedYear = int(year.Int64)
	b.Language = language.String
	b.Pages = int(pages.Int64)
	b.Category = CategoryOf(category)
	b.Description = description.String
	b.Image = image.String
	return b, nil
}
