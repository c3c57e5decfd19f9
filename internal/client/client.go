// Package client provides an HTTP client for the procedure backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/procview/internal/metrics"
	"github.com/raphaelgruber/procview/internal/models"
)

// Sentinel errors for backend calls.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNetwork indicates the request could not be completed or the backend
	// answered with an unexpected status.
	ErrNetwork = errors.New("backend unreachable")

	// ErrUnauthorized indicates rejected credentials.
	ErrUnauthorized = errors.New("invalid email or password")

	// ErrFeedbackRejected indicates the backend declined a feedback message.
	ErrFeedbackRejected = errors.New("feedback rejected")

	// ErrMalformedResponse indicates a response body of the wrong shape.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Backend paths relative to the base URL.
const (
	PathLogin    = "/api/v1/user/user-login"
	PathTree     = "/api/v1/procedure/get/procedures/by/user/"
	PathFeedback = "/api/v1/feedback/"
)

const maxErrorBody = 512

// Client talks to the procedure backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records request timings in mc.
func WithMetrics(mc *metrics.Collector) Option {
	return func(c *Client) { c.metrics = mc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL. A zero timeout means
// requests wait until their context is done.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges credentials for a session record.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (session models.Session, err error) {
	defer c.metrics.Observe(metrics.OpLogin, time.Now(), &err)

	err = c.do(ctx, http.MethodPost, c.baseURL+PathLogin, creds, &session)
	if errors.Is(err, errStatusUnauthorized) {
		return models.Session{}, ErrUnauthorized
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("login: %w", err)
	}
	if !session.Success {
		return models.Session{}, ErrUnauthorized
	}
	return session, nil
}

// FetchTree returns the folder tree visible to the user.
func (c *Client) FetchTree(ctx context.Context, userID string) (tree []models.FolderTree, err error) {
	defer c.metrics.Observe(metrics.OpFetchTree, time.Now(), &err)

	var env models.FolderEnvelope
	if err := c.do(ctx, http.MethodGet, c.baseURL+PathTree+url.PathEscape(userID), nil, &env); err != nil {
		return nil, fmt.Errorf("fetch folder tree: %w", err)
	}
	if env.Data == nil {
		env.Data = []models.FolderTree{}
	}
	return env.Data, nil
}

// FetchScanned resolves a scanned procedure URL. The backend answers with a
// JSON array whose first element is the procedure.
func (c *Client) FetchScanned(ctx context.Context, rawURL string) (doc models.ProcedureNode, err error) {
	defer c.metrics.Observe(metrics.OpFetchScan, time.Now(), &err)

	var docs []models.ProcedureNode
	if err := c.do(ctx, http.MethodGet, rawURL, nil, &docs); err != nil {
		return models.ProcedureNode{}, fmt.Errorf("fetch scanned procedure: %w", err)
	}
	if len(docs) == 0 {
		return models.ProcedureNode{}, fmt.Errorf("fetch scanned procedure: %w: empty result", ErrMalformedResponse)
	}
	return docs[0], nil
}

// SubmitFeedback posts a free-text message about a procedure.
func (c *Client) SubmitFeedback(ctx context.Context, userID, procedureID, text string) (err error) {
	defer c.metrics.Observe(metrics.OpFeedback, time.Now(), &err)

	endpoint := c.baseURL + PathFeedback + url.PathEscape(userID) + "/" + url.PathEscape(procedureID)
	var res models.Result
	if err := c.do(ctx, http.MethodPost, endpoint, models.Feedback{Description: text}, &res); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	if !res.Success {
		if res.Message != "" {
			return fmt.Errorf("%w: %s", ErrFeedbackRejected, res.Message)
		}
		return ErrFeedbackRejected
	}
	return nil
}

// Download streams the resource at rawURL into w and returns the bytes written.
// A path without scheme and host is resolved against the backend URL.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (n int64, err error) {
	defer c.metrics.Observe(metrics.OpDownload, time.Now(), &err)

	resp, err := c.send(ctx, http.MethodGet, c.resolve(rawURL), nil)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	n, err = io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download: %w: %v", ErrNetwork, err)
	}
	return n, nil
}

func (c *Client) resolve(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.IsAbs() {
		return rawURL
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return rawURL
	}
	return base.ResolveReference(u).String()
}

var errStatusUnauthorized = fmt.Errorf("%w: unauthorized", ErrNetwork)

// do sends body as JSON and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.send(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return nil
}

// send performs the request and rejects non-2xx statuses. The caller closes
// the body of a successful response.
func (c *Client) send(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	c.logger.Debug("backend request",
		"method", method, "url", endpoint, "status", resp.StatusCode,
		"request_id", reqID, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, errStatusUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s - %s", ErrNetwork, resp.Status, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}
