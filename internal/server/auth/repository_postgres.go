package auth

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	getAccountByIDQuery = `
		SELECT id, name, email, role, password_hash
		FROM users
		WHERE id = $1
	`
	getAccountByEmailQuery = `
		SELECT id, name, email, role, password_hash
		FROM users
		WHERE lower(email) = lower($1)
	`
	insertAccountQuery = `
		INSERT INTO users (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	countAccountsQuery = `SELECT COUNT(*) FROM users`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(id int) (Account, error) {
	return r.getOne(getAccountByIDQuery, id)
}

func (r *PostgresRepository) GetByEmail(email string) (Account, error) {
	return r.getOne(getAccountByEmailQuery, strings.TrimSpace(email))
}

func (r *PostgresRepository) getOne(query string, arg any) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(a Account) (Account, error) {
	err := r.db.QueryRow(insertAccountQuery, a.Name, a.Email, a.Role, a.PasswordHash).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrEmailExists
		}
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(countAccountsQuery).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanAccount(s rowScanner) (Account, error) {
	var a Account
	if err := s.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.PasswordHash); err != nil {
		return Account{}, err
	}
	return a, nil
}
