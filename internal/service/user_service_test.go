package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	dom "github.com/pearcepallen/virtual-card/internal/domain"
	"github.com/pearcepallen/virtual-card/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo keeps users in memory and mimics the Postgres repo's error
// surface: pgx.ErrNoRows on misses, pgconn 23505 on duplicate emails.
type fakeUserRepo struct {
	nextID int64
	users  map[string]dom.User // keyed by email

	lastOffset int
	lastLimit  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[string]dom.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	if _, ok := f.users[u.Email]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	u.ID = f.nextID
	f.nextID++
	u.IsActive = true
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	u, ok := f.users[email]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeUserRepo) UpdateField(ctx context.Context, email, field, value string) (dom.User, error) {
	if _, ok := repo.UpdatableField(field); !ok {
		return dom.User{}, fmt.Errorf("%w: %s", repo.ErrUnknownField, field)
	}
	u, ok := f.users[email]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	switch field {
	case "city":
		u.City = value
	case "first_name":
		u.FirstName = value
	case "is_active":
		u.IsActive = value == "true"
	}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]dom.User, error) {
	f.lastOffset = offset
	f.lastLimit = limit
	out := make([]dom.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func validInput(email string) CreateUserInput {
	return CreateUserInput{
		Username:   strings.SplitN(email, "@", 2)[0],
		FirstName:  "John",
		LastName:   "Doe",
		Email:      email,
		Password:   "secret",
		City:       "Oakland",
		Address1:   "180 Grand Ave",
		State:      "CA",
		PostalCode: "94612",
		Country:    "USA",
	}
}

func TestCreate_HashesPassword(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	u, err := svc.Create(context.Background(), validInput("a@b.com"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned ID")
	}
	if u.Email != "a@b.com" {
		t.Fatalf("email mismatch: %q", u.Email)
	}
	if u.HashedPassword == "secret" || strings.Contains(u.HashedPassword, "secret") {
		t.Fatalf("plaintext leaked into stored credential: %q", u.HashedPassword)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestCreate_AssignsUniqueIDs(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		u, err := svc.Create(context.Background(), validInput(fmt.Sprintf("u%d@b.com", i)))
		if err != nil {
			t.Fatalf("Create error: %v", err)
		}
		if seen[u.ID] {
			t.Fatalf("ID %d assigned twice", u.ID)
		}
		seen[u.ID] = true
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	if _, err := svc.Create(context.Background(), validInput("a@b.com")); err != nil {
		t.Fatalf("first Create error: %v", err)
	}
	_, err := svc.Create(context.Background(), validInput("a@b.com"))
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil)

	_, err := svc.GetByEmail(context.Background(), "nobody@b.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetByEmail_ReturnsStoredRecord(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	created, err := svc.Create(context.Background(), validInput("a@b.com"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	got, err := svc.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != created.ID || got.Username != created.Username || got.City != created.City {
		t.Fatalf("record mismatch: got %+v want %+v", got, created)
	}
}

func TestUpdateField_NotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), nil)

	_, err := svc.UpdateField(context.Background(), "nobody@b.com", "city", "Reno")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateField_UnknownField(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	if _, err := svc.Create(context.Background(), validInput("a@b.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	_, err := svc.UpdateField(context.Background(), "a@b.com", "hashed_password", "x")
	if !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
}

func TestUpdateField_OverwritesOnlyNamedField(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	created, err := svc.Create(context.Background(), validInput("a@b.com"))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	got, err := svc.UpdateField(context.Background(), "a@b.com", "city", "Reno")
	if err != nil {
		t.Fatalf("UpdateField error: %v", err)
	}
	if got.City != "Reno" {
		t.Fatalf("city not updated: %q", got.City)
	}
	if got.FirstName != created.FirstName || got.Email != created.Email || got.ID != created.ID {
		t.Fatalf("other fields changed: got %+v", got)
	}
}

func TestList_DefaultsAndCap(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	if _, err := svc.List(context.Background(), -1, 0); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if f.lastOffset != 0 || f.lastLimit != 100 {
		t.Fatalf("expected defaults 0/100, got %d/%d", f.lastOffset, f.lastLimit)
	}

	if _, err := svc.List(context.Background(), 10, 9999); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if f.lastOffset != 10 || f.lastLimit != 500 {
		t.Fatalf("expected cap 10/500, got %d/%d", f.lastOffset, f.lastLimit)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	if _, err := svc.Create(context.Background(), validInput("a@b.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), "a", "secret")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if u.Email != "a@b.com" {
		t.Fatalf("wrong user: %+v", u)
	}

	if _, err := svc.Authenticate(context.Background(), "a", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ghost", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestGetActiveByUsername(t *testing.T) {
	f := newFakeUserRepo()
	svc := NewUserService(f, nil)

	if _, err := svc.Create(context.Background(), validInput("a@b.com")); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	u, err := svc.GetActiveByUsername(context.Background(), "a")
	if err != nil {
		t.Fatalf("GetActiveByUsername error: %v", err)
	}
	if !u.IsActive {
		t.Fatalf("expected active user")
	}

	if _, err := svc.UpdateField(context.Background(), "a@b.com", "is_active", "false"); err != nil {
		t.Fatalf("UpdateField error: %v", err)
	}
	if _, err := svc.GetActiveByUsername(context.Background(), "a"); !errors.Is(err, ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}

	if _, err := svc.GetActiveByUsername(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
