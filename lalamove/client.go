package lalamove

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var ErrMissingCredentials = errors.New("lalamove: missing API key or secret")

// APIError is returned for any non-2xx provider response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lalamove %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, string(e.Body))
}

type Credentials struct {
	Key    string
	Secret string
	Market string
}

type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time
	requestID  func() string
}

func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
		requestID:  func() string { return uuid.NewString() },
	}
}

func (c *Client) Name() string { return "lalamove (" + c.baseURL + ")" }

func (c *Client) Quote(ctx context.Context, req *QuotationRequest) (*Quotation, error) {
	var out envelope[Quotation]
	if err := c.do(ctx, http.MethodPost, "/v3/quotations", envelope[*QuotationRequest]{Data: req}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetQuotation(ctx context.Context, quotationID string) (*Quotation, error) {
	var out envelope[Quotation]
	if err := c.do(ctx, http.MethodGet, "/v3/quotations/"+url.PathEscape(quotationID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	var out envelope[Order]
	if err := c.do(ctx, http.MethodPost, "/v3/orders", envelope[*OrderRequest]{Data: req}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var out envelope[Order]
	if err := c.do(ctx, http.MethodGet, "/v3/orders/"+url.PathEscape(orderID), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) GetDriver(ctx context.Context, orderID, driverID string) (*Driver, error) {
	path := "/v3/orders/" + url.PathEscape(orderID) + "/drivers/" + url.PathEscape(driverID)
	var out envelope[Driver]
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Ping checks that the provider is reachable and accepts our credentials.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v3/cities", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	if c.creds.Key == "" || c.creds.Secret == "" {
		return ErrMissingCredentials
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("lalamove marshal: %w", err)
		}
		payload = data
	}

	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("lalamove %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", Token(c.creds.Key, ts, Sign(c.creds.Secret, ts, method, path, payload)))
	req.Header.Set("Market", c.creds.Market)
	req.Header.Set("Request-ID", c.requestID())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lalamove %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	return c.decode(resp, method, path, result)
}

func (c *Client) decode(resp *http.Response, method, path string, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("lalamove read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Method: method, Path: path, Body: data}
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("lalamove decode: %w", err)
		}
	}
	return nil
}
