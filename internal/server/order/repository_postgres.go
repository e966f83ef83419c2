package order

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	insertOrderQuery = `
		INSERT INTO orders (user_id, order_number, status, total_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	insertItemQuery = `
		INSERT INTO order_items (order_id, book_id, book_title, quantity, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	selectOrdersQuery = `
		SELECT id, order_number, status, total_price, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	selectOrderQuery = `
		SELECT id, order_number, status, total_price, created_at
		FROM orders
		WHERE user_id = $1 AND id = $2
	`
	selectItemsQuery = `
		SELECT id, order_id, book_id, book_title, quantity, price
		FROM order_items
		WHERE order_id = ANY($1::int[])
		ORDER BY id
	`
	transitionQuery = `
		UPDATE orders SET status = $4
		WHERE user_id = $1 AND id = $2 AND status = $3
	`
	countOrdersQuery = `SELECT COUNT(*) FROM orders`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create writes the order and its items in one transaction.
func (r *PostgresRepository) Create(userID int, o model.Order) (model.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return model.Order{}, errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if err := tx.QueryRow(insertOrderQuery, userID, o.OrderNumber, o.Status, o.TotalPrice).Scan(&o.ID, &o.CreatedAt); err != nil {
		return model.Order{}, errors.Wrap(err, "insert order")
	}
	items := make([]model.OrderItem, len(o.Items))
	for i, it := range o.Items {
		if err := tx.QueryRow(insertItemQuery, o.ID, it.BookID, it.Book.Title, it.Quantity, it.Price).Scan(&it.ID); err != nil {
			return model.Order{}, errors.Wrapf(err, "insert item for book %d", it.BookID)
		}
		items[i] = it
	}
	if err := tx.Commit(); err != nil {
		return model.Order{}, errors.Wrap(err, "commit")
	}
	o.Items = items
	return o, nil
}

func (r *PostgresRepository) ListByUser(userID int) ([]model.Order, error) {
	rows, err := r.db.Query(selectOrdersQuery, userID)
	if err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresRepository) Get(userID, id int) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRow(selectOrderQuery, userID, id))
	if err == sql.ErrNoRows {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	orders := []model.Order{o}
	if err := r.attachItems(orders); err != nil {
		return model.Order{}, err
	}
	return orders[0], nil
}

func (r *PostgresRepository) Transition(userID, id int, from, to string) (model.Order, error) {
	result, err := r.db.Exec(transitionQuery, userID, id, from, to)
	if err != nil {
		return model.Order{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Order{}, err
	}
	if affected == 0 {
		if _, err := r.Get(userID, id); err != nil {
			return model.Order{}, err
		}
		return model.Order{}, ErrNotCancellable
	}
	return r.Get(userID, id)
}

func (r *PostgresRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(countOrdersQuery).Scan(&n)
	return n, err
}

func (r *PostgresRepository) attachItems(orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	index := make(map[int]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = make([]model.OrderItem, 0)
	}
	rows, err := r.db.Query(selectItemsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it model.OrderItem
		var orderID int
		if err := rows.Scan(&it.ID, &orderID, &it.BookID, &it.Book.Title, &it.Quantity, &it.Price); err != nil {
			return err
		}
		it.Book.ID = it.BookID
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(s rowScanner) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.TotalPrice, &o.CreatedAt)
	return o, err
}
