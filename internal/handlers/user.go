package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pearcepallen/virtual-card/internal/dto"
	"github.com/pearcepallen/virtual-card/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles the user CRUD routes.
type UserHandler struct {
	svc *service.UserService
}

// NewUserHandler returns a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Create godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateUserRequest  true  "User body"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.svc.Create(c.Request.Context(), service.CreateUserInput{
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Password:   req.Password,
		City:       req.City,
		Address1:   req.Address1,
		Address2:   req.Address2,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password required"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.UserToResponse(u))
}

// GetByEmail godoc
// @Summary      Get a user by email
// @Tags         users
// @Produce      json
// @Param        email  path      string  true  "Email"
// @Success      200    {object}  dto.UserResponse
// @Failure      404    {object}  map[string]string
// @Router       /users/{email} [get]
func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.svc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, dto.UserToResponse(u))
}

// UpdateField godoc
// @Summary      Overwrite one user field
// @Description  Accepts only the declared updatable field names.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        email       path      string                  true  "Email"
// @Param        field_name  path      string                  true  "Field name"
// @Param        body        body      dto.UpdateFieldRequest  true  "New value"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{email}/{field_name} [put]
func (h *UserHandler) UpdateField(c *gin.Context) {
	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.svc.UpdateField(c.Request.Context(), c.Param("email"), c.Param("field_name"), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrInvalidField):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.UserToResponse(u))
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        offset  query     int  false  "Rows to skip"     default(0)
// @Param        limit   query     int  false  "Page size, max 500"  default(100)
// @Success      200     {object}  dto.ListUsersResponse
// @Failure      500     {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	users, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Items: dto.UsersToResponses(users)})
}
