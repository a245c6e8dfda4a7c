package marqeta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pearcepallen/virtual-card/internal/config"
)

// ErrConfigMissing is returned before any network call when the base URL or
// either credential is absent from configuration.
var ErrConfigMissing = errors.New("marqeta configuration missing")

// Response is the provider's reply, relayed verbatim: the card-issuing API's
// semantics are opaque to this service, so the body is never interpreted.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// CreateUserInput is the subset of account fields the provider's user
// resource takes.
type CreateUserInput struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Address1   string `json:"address1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Client forwards card-issuing operations to the Marqeta HTTP API using
// basic auth from configuration. It holds no other state.
type Client struct {
	baseURL    string
	apiToken   string
	adminToken string
	http       *http.Client
}

// NewClient builds a Client from config. Missing values are tolerated here
// and rejected per call.
func NewClient(cfg config.MarqetaConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:   cfg.APIToken,
		adminToken: cfg.AdminToken,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) checkConfig() error {
	switch {
	case c.baseURL == "":
		return fmt.Errorf("%w: MARQETA_BASE_URL", ErrConfigMissing)
	case c.apiToken == "":
		return fmt.Errorf("%w: MARQETA_API_TOKEN", ErrConfigMissing)
	case c.adminToken == "":
		return fmt.Errorf("%w: MARQETA_ADMIN_TOKEN", ErrConfigMissing)
	}
	return nil
}

// CreateUser registers an account holder with the provider.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (Response, error) {
	return c.do(ctx, http.MethodPost, "/users", in)
}

// GetUser fetches a provider user by its token.
func (c *Client) GetUser(ctx context.Context, token string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/users/"+token, nil)
}

// CreateCardProduct creates the virtual-card product: activates on issue,
// fulfilled as a virtual PAN, valid from today.
func (c *Client) CreateCardProduct(ctx context.Context) (Response, error) {
	body := map[string]any{
		"name":       "virtual card",
		"start_date": time.Now().UTC().Format("2006-01-02"),
		"config": map[string]any{
			"card_life_cycle": map[string]any{
				"activate_upon_issue": true,
			},
			"fulfillment": map[string]any{
				"payment_instrument": "VIRTUAL_PAN",
			},
		},
	}
	return c.do(ctx, http.MethodPost, "/cardproducts", body)
}

// GetCardProduct fetches a card product by its token.
func (c *Client) GetCardProduct(ctx context.Context, token string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/cardproducts/"+token, nil)
}

// CreateCard issues a card for the given user under the given card product.
func (c *Client) CreateCard(ctx context.Context, cardProductToken, userToken string) (Response, error) {
	body := map[string]string{
		"card_product_token": cardProductToken,
		"user_token":         userToken,
	}
	return c.do(ctx, http.MethodPost, "/cards", body)
}

// GetCard fetches a card by its token.
func (c *Client) GetCard(ctx context.Context, token string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/cards/"+token, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (Response, error) {
	if err := c.checkConfig(); err != nil {
		return Response{}, err
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiToken, c.adminToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("marqeta %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read marqeta response: %w", err)
	}
	return Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
