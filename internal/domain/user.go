package domain

import "time"

// User is the domain entity for an account holder.
// Marqeta tokens are filled in after the corresponding provider calls succeed.
type User struct {
	ID             int64
	Username       string
	FirstName      string
	LastName       string
	Email          string
	HashedPassword string
	IsActive       bool

	City       string
	Address1   string
	Address2   *string
	State      string
	PostalCode string
	Country    string

	MarqetaCardToken        *string
	MarqetaUserToken        *string
	MarqetaCardProductToken *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
