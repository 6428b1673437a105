package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound    = errors.New("customer not found")
	ErrUnavailable = errors.New("store unavailable")
	ErrConstraint  = errors.New("constraint violation")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the customers table when it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createTableQuery)
	if err != nil {
		return classify(err)
	}
	return nil
}

const createTableQuery = `
CREATE TABLE IF NOT EXISTS customers (
	customer_id     VARCHAR(50) PRIMARY KEY,
	first_name      VARCHAR(100) NOT NULL,
	last_name       VARCHAR(100) NOT NULL,
	email           VARCHAR(255) NOT NULL,
	phone           VARCHAR(20),
	address         TEXT,
	date_of_birth   DATE,
	account_balance NUMERIC(15,2),
	created_at      TIMESTAMPTZ
)`

// Upsert inserts the record, or overwrites every mutable column when the
// customer_id already exists. Single statement, so concurrent upserts on the
// same ID serialize at the row and the last commit wins. created_at falls
// back to now() on first insert and keeps the stored value on conflict when
// the incoming record carries none.
func (r *Repository) Upsert(ctx context.Context, c Customer) error {
	_, err := r.db.ExecContext(ctx, upsertQuery,
		c.CustomerID, c.FirstName, c.LastName, c.Email,
		c.Phone, c.Address, c.DateOfBirth, c.AccountBalance, c.CreatedAt)
	if err != nil {
		return classify(err)
	}
	return nil
}

const upsertQuery = `
INSERT INTO customers (customer_id, first_name, last_name, email, phone, address, date_of_birth, account_balance, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
ON CONFLICT (customer_id) DO UPDATE SET
	first_name      = EXCLUDED.first_name,
	last_name       = EXCLUDED.last_name,
	email           = EXCLUDED.email,
	phone           = EXCLUDED.phone,
	address         = EXCLUDED.address,
	date_of_birth   = EXCLUDED.date_of_birth,
	account_balance = EXCLUDED.account_balance,
	created_at      = COALESCE($9, customers.created_at)`

func (r *Repository) GetByID(ctx context.Context, id string) (Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, getByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	if err != nil {
		return Customer{}, classify(err)
	}
	return c, nil
}

const getByIDQuery = `SELECT * FROM customers WHERE customer_id = $1`

// GetPage returns the page-th slice (1-based) of all customers ordered by
// customer_id. A page past the end yields empty Items with Total and
// TotalPages still filled in.
func (r *Repository) GetPage(ctx context.Context, page, limit int) (Page, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return Page{}, classify(err)
	}

	items := []Customer{}
	offset := (page - 1) * limit
	if err := r.db.SelectContext(ctx, &items, getPageQuery, limit, offset); err != nil {
		return Page{}, classify(err)
	}

	return Page{
		Items:      items,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

const countQuery = `SELECT count(*) FROM customers`
const getPageQuery = `SELECT * FROM customers ORDER BY customer_id LIMIT $1 OFFSET $2`

// classify maps driver errors onto the store's error taxonomy. Integrity and
// data exceptions (classes 23 and 22) mean the row itself is bad; anything
// else is treated as the store being unreachable.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) || pgerrcode.IsDataException(pgErr.Code) {
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
