package category

import (
	"database/sql"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns rows parents first, each level ordered by id.
func (r *PostgresRepository) List() ([]Row, error) {
	rows, err := r.db.Query(`SELECT id, COALESCE(parent_id, 0), name, slug FROM categories ORDER BY parent_id NULLS FIRST, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.ParentID, &row.Name, &row.Slug); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
