package matcher

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"entmatch/internal/config"
	"entmatch/internal/logging"
	"entmatch/internal/services"
)

const (
	healthPath = "/health"
	matchPath  = "/match"
	batchPath  = "/match/batch"

	// RequestIDHeader carries the per-request correlation identifier.
	RequestIDHeader = "X-Request-ID"

	batchFieldName = "file"
	batchFileName  = "names.csv"
	batchColumn    = "names"
)

// Service is the full remote surface. Consumers should declare the narrower
// interface they need.
type Service interface {
	Health(ctx context.Context) (Health, error)
	MatchSingle(ctx context.Context, query string) (SingleOutcome, error)
	MatchBatch(ctx context.Context, names []string) ([]BatchOutcome, error)
}

// Client talks to the remote matcher over HTTP.
type Client struct {
	baseURL         string
	timeout         time.Duration
	httpClient      *http.Client
	limiter         *rate.Limiter
	maxAlternatives int
	logger          *slog.Logger
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit paces outgoing requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxAlternatives caps the alternatives kept from single-query responses.
// A negative value keeps everything.
func WithMaxAlternatives(n int) Option {
	return func(c *Client) {
		c.maxAlternatives = n
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "matcher")
	}
}

// New creates a matcher client.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("matcher base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("matcher base url: %w", err)
	}
	if timeout <= 0 {
		return nil, errors.New("matcher timeout must be positive")
	}
	client := &Client{
		baseURL: baseURL,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxAlternatives: 10,
		logger:          logging.NewComponentLogger(nil, "matcher"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [matcher] and [search] sections.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	base := []Option{
		WithLogger(logger),
		WithRateLimit(cfg.Matcher.RequestsPerSecond),
		WithMaxAlternatives(cfg.Search.MaxAlternatives),
	}
	return New(cfg.Matcher.BaseURL, cfg.Timeout(), append(base, opts...)...)
}

// Health reports service liveness.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, healthPath, nil, "", &health); err != nil {
		return Health{}, err
	}
	return health, nil
}

// MatchSingle submits one trimmed query.
func (c *Client) MatchSingle(ctx context.Context, query string) (SingleOutcome, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SingleOutcome{}, ErrEmptyQuery
	}
	payload, err := json.Marshal(struct {
		Query string `json:"query"`
	}{Query: query})
	if err != nil {
		return SingleOutcome{}, fmt.Errorf("encode match request: %w", err)
	}

	var outcome SingleOutcome
	if err := c.do(ctx, http.MethodPost, matchPath, bytes.NewReader(payload), "application/json", &outcome); err != nil {
		return SingleOutcome{}, err
	}
	if c.maxAlternatives >= 0 && len(outcome.Alternatives) > c.maxAlternatives {
		outcome.Alternatives = outcome.Alternatives[:c.maxAlternatives]
	}
	if outcome.Query == "" {
		outcome.Query = query
	}
	return outcome, nil
}

// MatchBatch uploads names as a single-column CSV and returns the per-name
// outcomes in the order the service sent them.
func (c *Client) MatchBatch(ctx context.Context, names []string) ([]BatchOutcome, error) {
	if len(names) == 0 {
		return nil, ErrNoNames
	}
	body, contentType, err := encodeBatch(names)
	if err != nil {
		return nil, err
	}

	var outcomes []BatchOutcome
	if err := c.do(ctx, http.MethodPost, batchPath, body, contentType, &outcomes); err != nil {
		return nil, err
	}
	if len(outcomes) != len(names) {
		logging.WithContext(ctx, c.logger).Warn("batch outcome count mismatch",
			logging.Int("sent", len(names)),
			logging.Int("received", len(outcomes)),
			logging.String(logging.FieldEventType, "batch_length_mismatch"),
		)
	}
	return outcomes, nil
}

func encodeBatch(names []string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, batchFieldName, batchFileName))
	header.Set("Content-Type", "text/csv")
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}

	writer := csv.NewWriter(part)
	if err := writer.Write([]string{batchColumn}); err != nil {
		return nil, "", fmt.Errorf("encode batch csv: %w", err)
	}
	for _, name := range names {
		if err := writer.Write([]string{name}); err != nil {
			return nil, "", fmt.Errorf("encode batch csv: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", fmt.Errorf("encode batch csv: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, form.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	logger := logging.WithContext(ctx, c.logger)

	if c.limiter != nil {
		if err := c.wait(ctx); err != nil {
			return c.transportFailure(err)
		}
	}

	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return c.transportFailure(fmt.Errorf("build %s url: %w", path, err))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return c.transportFailure(fmt.Errorf("build %s request: %w", path, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("matcher request failed",
			logging.String("method", method),
			logging.String("path", path),
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err),
		)
		return c.transportFailure(err)
	}
	defer resp.Body.Close()

	logger.Debug("matcher response",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusFailure(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{
			Message: fmt.Sprintf("Invalid response from matcher: %v", err),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}
	return nil
}

// wait blocks for a pacing token, bounded by the request timeout.
func (c *Client) wait(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.limiter.Wait(waitCtx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("pacing: %w", ctxErr)
	}
	// rate rejects waits that would overrun the deadline without wrapping
	// context.DeadlineExceeded.
	return fmt.Errorf("pacing: %w: %w", context.DeadlineExceeded, err)
}

// transportFailure normalizes errors raised before any response arrived.
func (c *Client) transportFailure(err error) *TransportError {
	message := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		message = urlErr.Err.Error()
	}
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		message = "Request cancelled"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		message = fmt.Sprintf("timeout of %dms exceeded", c.timeout.Milliseconds())
	}
	if strings.TrimSpace(message) == "" {
		message = unexpectedErrorMessage
	}
	return &TransportError{Message: message, Err: err}
}

// statusFailure prefers the service's own message over the generic status text.
func statusFailure(resp *http.Response) *TransportError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}
	message := ""
	if json.Unmarshal(data, &payload) == nil {
		message = strings.TrimSpace(payload.Message)
		if detail, ok := payload.Detail.(string); ok && message == "" {
			message = strings.TrimSpace(detail)
		}
	}
	if message == "" {
		message = fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
	}
	return &TransportError{Message: message, Status: resp.StatusCode}
}
