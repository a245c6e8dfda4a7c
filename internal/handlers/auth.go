package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pearcepallen/virtual-card/internal/auth"
	"github.com/pearcepallen/virtual-card/internal/dto"
	"github.com/pearcepallen/virtual-card/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles token issuance and the current-user lookup.
type AuthHandler struct {
	userSvc  *service.UserService
	secret   []byte
	tokenTTL time.Duration
}

// NewAuthHandler returns a new AuthHandler. ttl is the lifetime of tokens
// issued at login.
func NewAuthHandler(userSvc *service.UserService, secret []byte, ttl time.Duration) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, secret: secret, tokenTTL: ttl}
}

// Token godoc
// @Summary      Issue an access token
// @Description  OAuth2 password flow: form-encoded username and password.
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200  {object}  dto.TokenResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.userSvc.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	token, err := auth.IssueToken(user.Username, h.secret, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/me/ [get]
func (h *AuthHandler) Me(c *gin.Context) {
	username := auth.SubjectFromContext(c)
	user, err := h.userSvc.GetActiveByUsername(c.Request.Context(), username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "could not validate credentials"})
		case errors.Is(err, service.ErrInactiveUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "inactive user"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.UserToResponse(user))
}
