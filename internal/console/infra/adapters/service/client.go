package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/pkg/interceptors"
)

// TokenSource returns the bearer token to attach to a request, or "" to send
// the request anonymously.
type TokenSource func(ctx context.Context) string

// Paths holds the endpoint prefixes of the remote API. They differ between
// deployments, so none of them is hard-coded in the adapters.
type Paths struct {
	Content  string
	Prices   string
	Orders   string
	Payments string
}

func DefaultPaths() Paths {
	return Paths{
		Content:  "/content",
		Prices:   "/prices",
		Orders:   "/orders",
		Payments: "/payments",
	}
}

// Client is the shared HTTP plumbing for every REST adapter in this package.
type Client struct {
	baseURL string
	paths   Paths
	http    *http.Client
	token   TokenSource
}

// NewClient builds a client with a bounded per-request timeout. Requests are
// traced with otelhttp and carry the request id / idempotency key found in
// their context.
func NewClient(baseURL string, paths Paths, timeout time.Duration, token TokenSource) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(interceptors.NewPropagatingTransport(nil)),
		},
		token: token,
	}
}

type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *paginationDTO  `json:"pagination"`
}

// do sends one request and decodes the envelope's data into out (when non-nil).
// Transport failures come back wrapped in entity.ErrNetwork; responses that
// arrived but report failure come back as *entity.APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*paginationDTO, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", entity.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s: %v", entity.ErrNetwork, method, path, err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if resp.StatusCode >= 300 {
				return nil, &entity.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
			}
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &entity.APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	// Some endpoints (the price list) answer without a success flag.
	if env.Success != nil && !*env.Success {
		return nil, &entity.APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data of %s %s: %w", method, path, err)
		}
	}
	return env.Pagination, nil
}

// IsNetworkError reports whether err means the API could not be reached.
func IsNetworkError(err error) bool {
	return errors.Is(err, entity.ErrNetwork)
}
