// Package api is the storefront's only way to talk to the bookstore backend.
// Every response body is an envelope {"message", "data"}; paginated data is a
// model.Page inside that envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/bookstore-storefront/internal/model"
)

const (
	DefaultBaseURL    = "http://localhost:8000/api"
	DefaultStorageURL = "http://localhost:8000/storage"

	maxBody = 4 << 20
)

// TokenSource supplies the bearer token for the next request; "" means anonymous.
type TokenSource interface {
	Token() string
}

type anonymous struct{}

func (anonymous) Token() string { return "" }

type Client struct {
	baseURL        string
	storageURL     string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
	log            logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }

// WithUnauthorizedHandler sets the hook run when a request that carried a token
// is answered with 401.
func WithUnauthorizedHandler(fn func()) Option { return func(c *Client) { c.onUnauthorized = fn } }

func WithLogger(log logrus.FieldLogger) Option { return func(c *Client) { c.log = log } }

func WithStorageURL(u string) Option {
	return func(c *Client) { c.storageURL = strings.TrimRight(u, "/") }
}

// WithTimeout replaces the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = newHTTPClient(d)
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		storageURL: DefaultStorageURL,
		http:       newHTTPClient(10 * time.Second),
		tokens:     anonymous{},
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// CoverURL is the public URL of a book cover stored by the backend.
func (c *Client) CoverURL(image string) string {
	if image == "" {
		return ""
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return c.storageURL + "/" + strings.TrimLeft(image, "/")
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// want is the exact success status; 0 accepts any 2xx.
	want int
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: "encode request", Err: err}
	}
	return bytes.NewReader(b), nil
}

// do sends r and decodes the envelope's data into out (which may be nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "build request", Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	token := c.tokens.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.log.WithFields(logrus.Fields{"method": r.method, "path": r.path, "request_id": reqID})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return &Error{Kind: KindTransport, Message: "backend unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Status: resp.StatusCode, Kind: KindTransport, Message: "read response", Err: err}
	}
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(start)})

	var env model.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Kind: kindOfStatus(resp.StatusCode), Message: env.Message, Fields: env.Errors}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		log.WithField("message", apiErr.Message).Info("request rejected")
		if apiErr.Kind == KindUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}
	if r.want != 0 && resp.StatusCode != r.want {
		log.Warn("unexpected success status")
		return &Error{Status: resp.StatusCode, Kind: KindServer, Message: "unexpected status " + resp.Status}
	}
	log.Debug("request done")

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return &Error{Status: resp.StatusCode, Kind: KindTransport, Message: "decode response", Err: decodeErr}
	}
	if len(env.Data) == 0 {
		return &Error{Status: resp.StatusCode, Kind: KindTransport, Message: "response has no data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Status: resp.StatusCode, Kind: KindTransport, Message: "decode response data", Err: errors.WithStack(err)}
	}
	return nil
}
