package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("org-console-rest")

type Options struct {
	BaseURL         string
	Timeout         time.Duration
	RequestIDHeader string
	Logger          logrus.FieldLogger
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client sends JSON requests to a fixed base URL with a fixed per-request timeout.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	requestIDHeader string
	log             logrus.FieldLogger
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimSpace(opts.BaseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid base url: %q", baseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		baseURL:         u,
		httpClient:      httpClient,
		requestIDHeader: opts.RequestIDHeader,
		log:             logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Response is a 2xx reply.
type Response struct {
	Status int
	Body   []byte
}

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	if msg := ErrorMessage(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("Request failed with status code %d", e.Status)
}

// ErrorMessage extracts a human readable message from a structured error body.
// It returns "" when the body carries none.
func ErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "title", "error"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Do issues the request and returns the reply body for 2xx responses.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, reqBody any) (*Response, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, errors.Wrap(err, "json marshal request")
		}
		body = bytes.NewReader(b)
	}

	ctx, span := tracer.Start(ctx, "rest."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", u.String()),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "http request")
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.requestIDHeader != "" {
		req.Header.Set(c.requestIDHeader, uuid.NewString())
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, "http do")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "http read")
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, resp.Status)
		c.log.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Debug("backend returned non-2xx")
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: respBody}
	}
	return &Response{Status: resp.StatusCode, Body: respBody}, nil
}

// Get decodes the JSON reply of a GET into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return errors.Wrap(err, "json unmarshal response")
	}
	return nil
}
