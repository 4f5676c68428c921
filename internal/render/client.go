package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// MaxBodyBytes caps the size of a response body (16 MB). Larger
// responses are rejected rather than truncated.
const MaxBodyBytes = 16 << 20

// DefaultTimeout bounds a single request to the rendering service.
const DefaultTimeout = 30 * time.Second

var (
	// ErrRenderRequestFailed is matched by *RequestFailedError.
	ErrRenderRequestFailed = errors.New("render request failed")

	// ErrTransport is matched by *TransportError.
	ErrTransport = errors.New("transport error")

	// ErrBodyTooLarge is wrapped in the *TransportError returned for a
	// response exceeding the client's body cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// RequestFailedError reports a non-2xx answer from the rendering service.
// Body holds the service's diagnostic text.
type RequestFailedError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("Failed to fetch diagram: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *RequestFailedError) Is(target error) bool { return target == ErrRenderRequestFailed }

// TransportError reports a failure to reach the rendering service at all.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Something went wrong: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Fetcher retrieves rendered diagram markup for a rendering URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Client talks to a PlantUML rendering service.
type Client struct {
	server    string
	userAgent string
	maxBody   int64
	http      *http.Client
}

// NewClient creates a client for server. An empty server selects
// plantuml.DefaultServer and a non-positive timeout selects DefaultTimeout.
func NewClient(server string, timeout time.Duration) *Client {
	if server == "" {
		server = plantuml.DefaultServer
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		server:    server,
		userAgent: "umlwidget",
		maxBody:   MaxBodyBytes,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// Server returns the base URL of the rendering service.
func (c *Client) Server() string { return c.server }

// Fetch performs a GET on url and returns the response body. Non-2xx
// answers yield a *RequestFailedError and network failures a *TransportError.
// No retries are attempted.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return "", &TransportError{URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}
	if int64(len(body)) > c.maxBody {
		return "", &TransportError{URL: url, Err: fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, c.maxBody)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestFailedError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return string(body), nil
}

// Render encodes text, builds its URL on the client's server and fetches it.
// It returns the URL alongside the rendered body.
func (c *Client) Render(ctx context.Context, text string, format plantuml.Format) (url, body string, err error) {
	url, err = plantuml.FormatURL(text, c.server, format)
	if err != nil {
		return "", "", fmt.Errorf("encoding diagram: %w", err)
	}
	body, err = c.Fetch(ctx, url)
	if err != nil {
		return url, "", err
	}
	return url, body, nil
}
