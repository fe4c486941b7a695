package mobilemart

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds MobileMart API configuration.
type Config struct {
	BaseURL    string
	MerchantID string
	SecretKey  string
	Timeout    time.Duration
}

// Client is an HTTP client for the MobileMart catalogue API. Every request is
// signed with HMAC-SHA256 over merchantId + timestamp + path.
type Client struct {
	httpClient *http.Client
	config     Config
	debug      bool
}

// NewClient constructs a new MobileMart client with sane defaults.
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

// sign generates the request signature:
// hmac_sha256(merchantId + timestamp + path, secretKey)
func (c *Client) sign(timestamp, path string) string {
	mac := hmac.New(sha256.New, []byte(c.config.SecretKey))
	mac.Write([]byte(c.config.MerchantID + timestamp + path))
	return hex.EncodeToString(mac.Sum(nil))
}

// GetCatalogue retrieves the live item list for one VAS type.
func (c *Client) GetCatalogue(ctx context.Context, vasType string) ([]Item, error) {
	path := "/api/v1/catalogue?vasType=" + url.QueryEscape(vasType)

	var resp catalogueResponse
	if err := c.doGet(ctx, path, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("mobilemart catalogue error: %s", resp.Error)
	}
	return resp.Items, nil
}

// Ping performs a signed health check.
func (c *Client) Ping(ctx context.Context) error {
	var resp pingResponse
	if err := c.doGet(ctx, "/api/v1/ping", &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("mobilemart unhealthy: %s", resp.Error)
	}
	return nil
}

// doGet performs a signed GET and decodes the JSON response.
func (c *Client) doGet(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Merchant-Id", c.config.MerchantID)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", c.sign(timestamp, path))

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
			Str("path", path).
			Int("status_code", resp.StatusCode).
			RawJSON("response", respBody).
			Msg("[MOBILEMART] Incoming response")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mobilemart returned %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
