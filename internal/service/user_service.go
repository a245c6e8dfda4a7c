package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pearcepallen/virtual-card/internal/cache"
	dom "github.com/pearcepallen/virtual-card/internal/domain"
	"github.com/pearcepallen/virtual-card/internal/repo"
	"github.com/pearcepallen/virtual-card/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidField       = errors.New("invalid field")
	ErrInactiveUser       = errors.New("inactive user")
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// CreateUserInput carries the fields for a new account. The plaintext
// password is hashed here and never stored.
type CreateUserInput struct {
	Username   string
	FirstName  string
	LastName   string
	Email      string
	Password   string
	City       string
	Address1   string
	Address2   *string
	State      string
	PostalCode string
	Country    string
}

// UserService handles the account lifecycle and credential checks. Login and
// user creation share the same Postgres-backed store.
type UserService struct {
	repo  repo.UserRepo
	cache *cache.UserCache
	sf    singleflight.Group
}

// NewUserService creates a UserService. If c is nil, caching is disabled.
func NewUserService(r repo.UserRepo, c *cache.UserCache) *UserService {
	return &UserService{repo: r, cache: c}
}

// Create hashes the password with bcrypt, persists the record and returns it
// with the assigned ID.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (dom.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return dom.User{}, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, dom.User{
		Username:       in.Username,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		HashedPassword: string(hash),
		City:           in.City,
		Address1:       in.Address1,
		Address2:       in.Address2,
		State:          in.State,
		PostalCode:     in.PostalCode,
		Country:        in.Country,
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

// GetByEmail returns the user with the given email, reading through the cache.
func (s *UserService) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if s.cache != nil {
		key := "email:" + strings.ToLower(email)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if u, err := s.cache.GetByEmail(ctx, email); err == nil && u != nil {
				return *u, nil
			}
			u, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetByEmail(ctx, u)
			return u, nil
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return dom.User{}, ErrUserNotFound
			}
			return dom.User{}, err
		}
		return v.(dom.User), nil
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// UpdateField overwrites one allow-listed field and returns the updated record.
func (s *UserService) UpdateField(ctx context.Context, email, field, value string) (dom.User, error) {
	u, err := s.repo.UpdateField(ctx, strings.TrimSpace(email), field, value)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUnknownField), errors.Is(err, repo.ErrInvalidFieldValue):
			return dom.User{}, fmt.Errorf("%w: %v", ErrInvalidField, err)
		case errors.Is(err, pgx.ErrNoRows):
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, err
	}
	s.invalidateCache(ctx)
	return u, nil
}

// List returns a page of users. Offset defaults to 0, limit to 100, capped at 500.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]dom.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if s.cache != nil {
		key := fmt.Sprintf("list:%d:%d", offset, limit)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetListPage(ctx, offset, limit); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, offset, limit)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetListPage(ctx, offset, limit, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.User), nil
	}
	return s.repo.List(ctx, offset, limit)
}

// Authenticate checks username and password against the stored hash and
// returns the user. Every failure mode reports the same error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetActiveByUsername resolves a token subject to its account, rejecting
// deactivated accounts.
func (s *UserService) GetActiveByUsername(ctx context.Context, username string) (dom.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, err
	}
	if !u.IsActive {
		return dom.User{}, ErrInactiveUser
	}
	return u, nil
}

func (s *UserService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateAll(ctx)
	}
}
