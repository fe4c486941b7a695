package flash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds Flash API configuration.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client is an HTTP client for the Flash catalog API. Authentication uses an
// OAuth client-credentials token cached until shortly before expiry.
type Client struct {
	httpClient *http.Client
	config     Config

	tokenMu  sync.RWMutex
	token    string
	tokenExp time.Time

	debug bool
}

// NewClient constructs a new Flash client with sane defaults.
func NewClient(config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		debug:      os.Getenv("ENV") == "development",
	}
}

// ensureToken returns a valid bearer token, refreshing it when missing or
// within a minute of expiry.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.RLock()
	if c.token != "" && time.Until(c.tokenExp) > time.Minute {
		token := c.token
		c.tokenMu.RUnlock()
		return token, nil
	}
	c.tokenMu.RUnlock()

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.token != "" && time.Until(c.tokenExp) > time.Minute {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/oauth/token", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token request returned %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.token = tr.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

// GetCatalog retrieves the live product list for one category.
func (c *Client) GetCatalog(ctx context.Context, category string) ([]Product, error) {
	var resp catalogResponse
	endpoint := fmt.Sprintf("/v2/catalog/products?category=%s", url.QueryEscape(category))
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("flash catalog returned status %q: %s", resp.Status, resp.Message)
	}
	return resp.Products, nil
}

// Ping performs an authenticated health check.
func (c *Client) Ping(ctx context.Context) error {
	var resp healthResponse
	if err := c.doGet(ctx, "/v2/health", &resp); err != nil {
		return err
	}
	if resp.Status != "UP" {
		return fmt.Errorf("flash reports status %q", resp.Status)
	}
	return nil
}

// doGet performs an authenticated GET and decodes the JSON response.
func (c *Client) doGet(ctx context.Context, endpoint string, result any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[FLASH] Incoming response")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("flash returned %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
