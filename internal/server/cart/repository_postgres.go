package cart

import (
	"database/sql"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	listCartQuery = `
		SELECT id, user_id, book_id, quantity
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id
	`
	addToCartQuery = `
		INSERT INTO cart_items (user_id, book_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, book_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, user_id, book_id, quantity
	`
	setQuantityQuery = `
		UPDATE cart_items SET quantity = $3
		WHERE id = $2 AND user_id = $1
		RETURNING id, user_id, book_id, quantity
	`
	removeCartQuery = `DELETE FROM cart_items WHERE id = $2 AND user_id = $1`
	removeBookQuery = `DELETE FROM cart_items WHERE book_id = $1`
	takeCartQuery   = `
		DELETE FROM cart_items
		WHERE user_id = $1 AND id = ANY($2::int[])
		RETURNING id, user_id, book_id, quantity
	`
	restoreCartQuery = `
		INSERT INTO cart_items (id, user_id, book_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, book_id) DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(userID int) ([]Line, error) {
	rows, err := r.db.Query(listCartQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLines(rows)
}

func (r *PostgresRepository) Add(userID, bookID, qty int) (Line, error) {
	var l Line
	err := r.db.QueryRow(addToCartQuery, userID, bookID, qty).Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity)
	return l, err
}

func (r *PostgresRepository) SetQuantity(userID, id, qty int) (Line, error) {
	var l Line
	err := r.db.QueryRow(setQuantityQuery, userID, id, qty).Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity)
	if err == sql.ErrNoRows {
		return Line{}, ErrNotFound
	}
	return l, err
}

func (r *PostgresRepository) Remove(userID, id int) error {
	result, err := r.db.Exec(removeCartQuery, userID, id)
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

func (r *PostgresRepository) RemoveBook(bookID int) (int, error) {
	result, err := r.db.Exec(removeBookQuery, bookID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

func (r *PostgresRepository) Take(userID int, ids []int) ([]Line, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(takeCartQuery, userID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	taken, err := scanLines(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(taken) != len(distinct(ids)) {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return taken, nil
}

func (r *PostgresRepository) Restore(lines []Line) error {
	for _, l := range lines {
		if _, err := r.db.Exec(restoreCartQuery, l.ID, l.UserID, l.BookID, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func scanLines(rows *sql.Rows) ([]Line, error) {
	out := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func distinct(ids []int) map[int]struct{} {
	m := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
