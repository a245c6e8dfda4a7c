package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	dom "github.com/pearcepallen/virtual-card/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUnknownField is returned by UpdateField for a name outside the allow-list.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidFieldValue is returned when the value cannot be coerced to the column type.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// UserRepo provides user persistence.
type UserRepo interface {
	Create(ctx context.Context, u dom.User) (dom.User, error)
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	UpdateField(ctx context.Context, email, field, value string) (dom.User, error)
	List(ctx context.Context, offset, limit int) ([]dom.User, error)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
)

// updatableFields is the closed set of field names PUT /users/:email/:field
// accepts, mapped to their columns. Identity (id, email) and credentials
// (hashed_password) are deliberately absent: those change through their own
// paths or not at all.
var updatableFields = map[string]struct {
	column string
	kind   fieldKind
}{
	"username":                  {"username", kindString},
	"first_name":                {"first_name", kindString},
	"last_name":                 {"last_name", kindString},
	"city":                      {"city", kindString},
	"address1":                  {"address1", kindString},
	"address2":                  {"address2", kindString},
	"state":                     {"state", kindString},
	"postal_code":               {"postal_code", kindString},
	"country":                   {"country", kindString},
	"is_active":                 {"is_active", kindBool},
	"marqeta_card_token":        {"marqeta_card_token", kindString},
	"marqeta_user_token":        {"marqeta_user_token", kindString},
	"marqeta_cardproduct_token": {"marqeta_cardproduct_token", kindString},
}

// UpdatableField reports whether name is an accepted field and returns its column.
func UpdatableField(name string) (string, bool) {
	f, ok := updatableFields[name]
	return f.column, ok
}

const userColumns = `id, username, first_name, last_name, email, hashed_password, is_active,
		city, address1, address2, state, postal_code, country,
		marqeta_card_token, marqeta_user_token, marqeta_cardproduct_token,
		created_at, updated_at`

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (dom.User, error) {
	var u dom.User
	err := row.Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.HashedPassword, &u.IsActive,
		&u.City, &u.Address1, &u.Address2, &u.State, &u.PostalCode, &u.Country,
		&u.MarqetaCardToken, &u.MarqetaUserToken, &u.MarqetaCardProductToken,
		&u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Create inserts a new user and returns it with the assigned ID.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (username, first_name, last_name, email, hashed_password,
			city, address1, address2, state, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + userColumns
	row := r.db.QueryRow(ctx, query,
		u.Username, u.FirstName, u.LastName, u.Email, u.HashedPassword,
		u.City, u.Address1, u.Address2, u.State, u.PostalCode, u.Country,
	)
	return scanUser(row)
}

// GetByEmail returns the user with the given email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// GetByUsername returns the user with the given username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// UpdateField overwrites one allow-listed field of the user with the given
// email and returns the updated record. The column name is taken from the
// allow-list, never from the request, so it is safe to interpolate.
func (r *PGUserRepo) UpdateField(ctx context.Context, email, field, value string) (dom.User, error) {
	f, ok := updatableFields[field]
	if !ok {
		return dom.User{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	var arg any = value
	if f.kind == kindBool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return dom.User{}, fmt.Errorf("%w: %s must be a boolean", ErrInvalidFieldValue, field)
		}
		arg = b
	}

	query := `UPDATE users SET ` + f.column + ` = $1, updated_at = now()
		WHERE email = $2
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, arg, email))
}

// List returns users ordered by ID, skipping offset rows and returning at most limit.
func (r *PGUserRepo) List(ctx context.Context, offset, limit int) ([]dom.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id OFFSET $1 LIMIT $2`
	rows, err := r.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []dom.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
