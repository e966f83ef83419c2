package book

import (
	"database/sql"
	"sync"
	"time"

	"github.com/wichananm65/bookstore-storefront/internal/model"
)

// ActivityLog records admin changes to the catalog for the dashboard feed.
type ActivityLog interface {
	Record(title, kind string, at time.Time) error
	Latest(n int) ([]model.Activity, error)
}

type InMemoryActivityLog struct {
	mu      sync.Mutex
	entries []model.Activity
}

func NewInMemoryActivityLog() *InMemoryActivityLog {
	return &InMemoryActivityLog{}
}

func (l *InMemoryActivityLog) Record(title, kind string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, model.Activity{Title: title, Type: kind, Time: at.UTC().Format(time.RFC3339)})
	return nil
}

// Latest returns up to n entries, newest first.
func (l *InMemoryActivityLog) Latest(n int) ([]model.Activity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Activity, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}

type PostgresActivityLog struct {
	db *sql.DB
}

func NewPostgresActivityLog(db *sql.DB) *PostgresActivityLog {
	return &PostgresActivityLog{db: db}
}

func (l *PostgresActivityLog) Record(title, kind string, at time.Time) error {
	_, err := l.db.Exec(`INSERT INTO book_activities (title, type, created_at) VALUES ($1, $2, $3)`, title, kind, at.UTC())
	return err
}

func (l *PostgresActivityLog) Latest(n int) ([]model.Activity, error) {
	rows, err := l.db.Query(`SELECT title, type, created_at FROM book_activities ORDER BY created_at DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Activity, 0, n)
	for rows.Next() {
		var a model.Activity
		var at time.Time
		if err := rows.Scan(&a.Title, &a.Type, &at); err != nil {
			return nil, err
		}
		a.Time = at.UTC().Format(time.RFC3339)
		out = append(out, a)
	}
	return out, rows.Err()
}
