package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veiloq/okx-connector/pkg/common"
	"github.com/veiloq/okx-connector/pkg/logging"
)

// RestClient is a minimal signed REST client for the OKX v5 API. It carries
// the request signing and envelope handling; the full endpoint catalog is
// intentionally not reproduced here.
type RestClient struct {
	baseURL string
	creds   *Credentials
	http    common.HTTPClient
	logger  logging.Logger
}

// RestOption configures a RestClient.
type RestOption func(*RestClient)

// WithRestLogger replaces the default logger.
func WithRestLogger(logger logging.Logger) RestOption {
	return func(c *RestClient) { c.logger = logger }
}

// WithBaseURL overrides the REST base URL.
func WithBaseURL(url string) RestOption {
	return func(c *RestClient) { c.baseURL = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient common.HTTPClient) RestOption {
	return func(c *RestClient) { c.http = httpClient }
}

// NewRestClient creates a REST client. Credentials may be nil; public
// endpoints work unsigned.
func NewRestClient(creds *Credentials, opts ...RestOption) *RestClient {
	c := &RestClient{
		baseURL: APIURL(),
		creds:   creds,
		http:    common.NewHTTPClient(nil),
		logger:  logging.NewLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// restEnvelope is the uniform response wrapper of the v5 API.
type restEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// APIError is a non-zero business code returned by the exchange.
type APIError struct {
	Code string
	Msg  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("okx api error (code %s): %s", e.Code, e.Msg)
}

// ServerTime returns the exchange's clock.
func (c *RestClient) ServerTime(ctx context.Context) (time.Time, error) {
	var data []struct {
		TS string `json:"ts"`
	}
	if err := c.get(ctx, "/api/v5/public/time", &data); err != nil {
		return time.Time{}, err
	}
	if len(data) == 0 {
		return time.Time{}, fmt.Errorf("empty server time response")
	}
	var ms int64
	if _, err := fmt.Sscan(data[0].TS, &ms); err != nil {
		return time.Time{}, fmt.Errorf("parsing server timestamp %q: %w", data[0].TS, err)
	}
	return time.UnixMilli(ms), nil
}

// Ticker holds the subset of ticker fields callers commonly need.
type Ticker struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
	AskPx  string `json:"askPx"`
	BidPx  string `json:"bidPx"`
	Vol24h string `json:"vol24h"`
}

// GetTicker fetches the current ticker for one instrument.
func (c *RestClient) GetTicker(ctx context.Context, instID string) (*Ticker, error) {
	var data []Ticker
	path := fmt.Sprintf("/api/v5/market/ticker?instId=%s", instID)
	if err := c.get(ctx, path, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no ticker data for %s", instID)
	}
	return &data[0], nil
}

// get executes a GET against path, signing it when credentials are present,
// and decodes the envelope's data field into out.
func (c *RestClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	if err := c.sign(req, path, ""); err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var envelope restEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	if envelope.Code != "" && envelope.Code != "0" {
		return &APIError{Code: envelope.Code, Msg: envelope.Msg}
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("error decoding response data: %w", err)
		}
	}
	return nil
}

// sign attaches the OK-ACCESS-* headers when credentials are configured.
// Public endpoints tolerate the headers' absence.
func (c *RestClient) sign(req *http.Request, path, body string) error {
	if c.creds == nil {
		return nil
	}
	timestamp := RestTimestamp(time.Now())
	signature, err := Sign(c.creds.APISecret, timestamp, req.Method, path, body)
	if err != nil {
		return fmt.Errorf("signing request: %w", err)
	}

	req.Header.Set("OK-ACCESS-KEY", c.creds.APIKey)
	req.Header.Set("OK-ACCESS-SIGN", signature)
	req.Header.Set("OK-ACCESS-TIMESTAMP", timestamp)
	req.Header.Set("OK-ACCESS-PASSPHRASE", c.creds.Passphrase)
	if SimulatedTrading() {
		req.Header.Set("x-simulated-trading", "1")
	}
	return nil
}
