// Package customer
package customer

import (
	"time"
)

// Customer is a single record as stored in the customers table.
type Customer struct {
	// CustomerID is the upstream identifier (e.g. "CUST001"). Primary key,
	// immutable once ingested.
	CustomerID string `db:"customer_id"`
	FirstName  string `db:"first_name"`
	LastName   string `db:"last_name"`
	Email      string `db:"email"`

	Phone          *string    `db:"phone"`
	Address        *string    `db:"address"`
	DateOfBirth    *time.Time `db:"date_of_birth"`
	AccountBalance *float64   `db:"account_balance"`

	// CreatedAt comes from upstream when present, otherwise it is set to the
	// time of first ingestion.
	CreatedAt *time.Time `db:"created_at"`
}

// Page is one slice of the stored record set, ordered by customer_id.
type Page struct {
	Items      []Customer
	Total      int
	TotalPages int
}
