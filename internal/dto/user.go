package dto

import (
	"time"

	dom "github.com/pearcepallen/virtual-card/internal/domain"
)

// CreateUserRequest is the JSON body for POST /users.
type CreateUserRequest struct {
	Username   string  `json:"username" binding:"required,min=1,max=120"`
	FirstName  string  `json:"first_name" binding:"required"`
	LastName   string  `json:"last_name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=1"`
	City       string  `json:"city" binding:"required"`
	Address1   string  `json:"address1" binding:"required"`
	Address2   *string `json:"address2"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country" binding:"required"`
}

// UpdateFieldRequest is the JSON body for PUT /users/{email}/{field_name}.
type UpdateFieldRequest struct {
	Value string `json:"value" binding:"required"`
}

// LoginForm is the form-encoded body for POST /token.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse is returned by POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is the public shape of a user record. The password hash never
// leaves the service.
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	IsActive  bool    `json:"is_active"`
	City      string  `json:"city"`
	Address1  string  `json:"address1"`
	Address2  *string `json:"address2,omitempty"`

	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	MarqetaCardToken        *string `json:"marqeta_card_token,omitempty"`
	MarqetaUserToken        *string `json:"marqeta_user_token,omitempty"`
	MarqetaCardProductToken *string `json:"marqeta_cardproduct_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListUsersResponse is returned by GET /users.
type ListUsersResponse struct {
	Items []UserResponse `json:"items"`
}

// UserToResponse maps the domain entity to its public shape.
func UserToResponse(u dom.User) UserResponse {
	return UserResponse{
		ID:                      u.ID,
		Username:                u.Username,
		FirstName:               u.FirstName,
		LastName:                u.LastName,
		Email:                   u.Email,
		IsActive:                u.IsActive,
		City:                    u.City,
		Address1:                u.Address1,
		Address2:                u.Address2,
		State:                   u.State,
		PostalCode:              u.PostalCode,
		Country:                 u.Country,
		MarqetaCardToken:        u.MarqetaCardToken,
		MarqetaUserToken:        u.MarqetaUserToken,
		MarqetaCardProductToken: u.MarqetaCardProductToken,
		CreatedAt:               u.CreatedAt,
		UpdatedAt:               u.UpdatedAt,
	}
}

// UsersToResponses maps a slice of users.
func UsersToResponses(users []dom.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToResponse(u))
	}
	return out
}
