package handlers

import (
	"errors"
	"net/http"

	"github.com/pearcepallen/virtual-card/internal/dto"
	"github.com/pearcepallen/virtual-card/internal/marqeta"

	"github.com/gin-gonic/gin"
)

// MarqetaHandler relays card-issuing operations to the provider. Responses
// are forwarded with the provider's status code and body untouched.
type MarqetaHandler struct {
	client *marqeta.Client
}

// NewMarqetaHandler returns a new MarqetaHandler.
func NewMarqetaHandler(client *marqeta.Client) *MarqetaHandler {
	return &MarqetaHandler{client: client}
}

// CreateUser godoc
// @Summary      Create a provider user
// @Tags         marqeta
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMarqetaUserRequest  true  "Account holder"
// @Success      200  {object}  object
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/users/ [post]
func (h *MarqetaHandler) CreateUser(c *gin.Context) {
	var req dto.CreateMarqetaUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.client.CreateUser(c.Request.Context(), marqeta.CreateUserInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Address1:   req.Address1,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	h.relay(c, resp, err)
}

// GetUser godoc
// @Summary      Fetch a provider user
// @Tags         marqeta
// @Produce      json
// @Param        token  path  string  true  "Provider user token"
// @Success      200  {object}  object
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/users/{token} [get]
func (h *MarqetaHandler) GetUser(c *gin.Context) {
	resp, err := h.client.GetUser(c.Request.Context(), c.Param("token"))
	h.relay(c, resp, err)
}

// CreateCardProduct godoc
// @Summary      Create the virtual-card product
// @Tags         marqeta
// @Produce      json
// @Success      200  {object}  object
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/cardproducts/ [post]
func (h *MarqetaHandler) CreateCardProduct(c *gin.Context) {
	resp, err := h.client.CreateCardProduct(c.Request.Context())
	h.relay(c, resp, err)
}

// GetCardProduct godoc
// @Summary      Fetch a card product
// @Tags         marqeta
// @Produce      json
// @Param        token  path  string  true  "Card product token"
// @Success      200  {object}  object
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/cardproducts/{token} [get]
func (h *MarqetaHandler) GetCardProduct(c *gin.Context) {
	resp, err := h.client.GetCardProduct(c.Request.Context(), c.Param("token"))
	h.relay(c, resp, err)
}

// CreateCard godoc
// @Summary      Issue a card
// @Tags         marqeta
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCardRequest  true  "Card product and user tokens"
// @Success      200  {object}  object
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/cards/ [post]
func (h *MarqetaHandler) CreateCard(c *gin.Context) {
	var req dto.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp, err := h.client.CreateCard(c.Request.Context(), req.CardProductToken, req.UserToken)
	h.relay(c, resp, err)
}

// GetCard godoc
// @Summary      Fetch a card
// @Tags         marqeta
// @Produce      json
// @Param        token  path  string  true  "Card token"
// @Success      200  {object}  object
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /marqeta/cards/{token} [get]
func (h *MarqetaHandler) GetCard(c *gin.Context) {
	resp, err := h.client.GetCard(c.Request.Context(), c.Param("token"))
	h.relay(c, resp, err)
}

func (h *MarqetaHandler) relay(c *gin.Context, resp marqeta.Response, err error) {
	if err != nil {
		if errors.Is(err, marqeta.ErrConfigMissing) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "card issuing provider unreachable"})
		return
	}
	c.Data(resp.StatusCode, "application/json; charset=utf-8", resp.Body)
}
