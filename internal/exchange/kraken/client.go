package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds the Kraken client settings.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string

	// DryRun keeps private endpoints local: balances are simulated in
	// memory and orders return fake transaction ids.
	DryRun     bool
	DryBalance float64
}

// Client is a Kraken REST client covering the endpoints the bot needs:
// ticker, OHLC history, balances and market buys.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client

	dryRun bool
	dryMu  sync.Mutex
	dryGBP float64
	dryXBT float64
}

// NewClient creates a Kraken client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.kraken.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		dryRun:     cfg.DryRun,
		dryGBP:     cfg.DryBalance,
	}
}

// IsDryRun reports whether the client simulates private endpoints.
func (c *Client) IsDryRun() bool {
	return c.dryRun
}

// kraken wraps every response in {"error": [...], "result": ...}.
type envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (c *Client) public(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	return c.do(req, path, out)
}

func (c *Client) private(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	nonce := strconv.FormatInt(time.Now().UnixMicro(), 10)
	params.Set("nonce", nonce)
	body := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.apiKey)

	signature, err := c.sign(path, nonce, body)
	if err != nil {
		return fmt.Errorf("sign request for %s: %w", path, err)
	}
	req.Header.Set("API-Sign", signature)

	return c.do(req, path, out)
}

// sign computes HMAC-SHA512(path + SHA256(nonce + body)) keyed with
// the base64-decoded API secret, per Kraken's authentication scheme.
func (c *Client) sign(path, nonce, body string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(c.apiSecret)
	if err != nil {
		return "", fmt.Errorf("decode API secret: %w", err)
	}

	digest := sha256.Sum256([]byte(nonce + body))
	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(digest[:])
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (c *Client) do(req *http.Request, path string, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kraken request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read kraken response for %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode kraken response for %s: %w", path, err)
	}
	if len(env.Error) > 0 {
		return &APIError{Endpoint: path, Messages: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode kraken result for %s: %w", path, err)
		}
	}
	return nil
}
