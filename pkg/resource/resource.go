// Package resource wraps the CRUD endpoints the backend exposes for each
// entity kind behind one generic client.
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/iota-uz/org-console/pkg/eventbus"
	"github.com/iota-uz/org-console/pkg/rest"
)

const unknownError = "An unknown error occurred"

// Endpoints binds one entity kind to its backend routes.
type Endpoints struct {
	Kind   string
	List   string
	Get    string
	Create string
	Update string
	Delete string
	// IDParam is the query parameter carrying the record id on get and delete.
	IDParam string
	// Envelopes are the object keys a list reply may wrap the collection in.
	Envelopes []string
}

func (e Endpoints) idQuery(id int64) url.Values {
	param := e.IDParam
	if param == "" {
		param = "Id"
	}
	return url.Values{param: []string{strconv.FormatInt(id, 10)}}
}

// FetchError is a failed read: transport failure, non-2xx reply or an undecodable body.
type FetchError struct {
	Kind    string
	Op      string
	ID      int64
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s(%d): %s", e.Kind, e.Op, e.ID, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Op, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MutationResult is the outcome of a write. Failures are never returned as errors.
type MutationResult[T any] struct {
	Success bool
	Data    *T
	Error   string
}

// BatchResult is the aggregate of concurrent deletes. Success is false when
// any single delete failed; deletes that went through are not rolled back.
type BatchResult struct {
	Success   bool
	Error     string
	Succeeded []int64
	Failed    []int64
}

// DeletedEvent is published after the backend confirmed a delete.
type DeletedEvent struct {
	Kind string
	ID   int64
}

type Config struct {
	Logger            logrus.FieldLogger
	Publisher         eventbus.EventBus
	DeleteConcurrency int
}

// Client is the typed gateway to one entity kind. T is the record, C the create
// payload and U the update payload.
type Client[T, C, U any] struct {
	rest        *rest.Client
	ep          Endpoints
	log         logrus.FieldLogger
	publisher   eventbus.EventBus
	concurrency int
}

func NewClient[T, C, U any](transport *rest.Client, ep Endpoints, conf Config) *Client[T, C, U] {
	logger := conf.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	concurrency := conf.DeleteConcurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Client[T, C, U]{
		rest:        transport,
		ep:          ep,
		log:         logger.WithField("entity", ep.Kind),
		publisher:   conf.Publisher,
		concurrency: concurrency,
	}
}

func (c *Client[T, C, U]) Kind() string {
	return c.ep.Kind
}

func (c *Client[T, C, U]) ListAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	resp, err := c.rest.Do(ctx, http.MethodGet, c.ep.List, nil, nil)
	if err != nil {
		observe(c.ep.Kind, "list", start, false)
		c.log.WithError(err).WithField("op", "list").Error("fetch collection failed")
		return nil, c.fetchError("list", 0, err)
	}
	items, err := DecodeList[T](resp.Body, c.ep.Envelopes...)
	if err != nil {
		observe(c.ep.Kind, "list", start, false)
		c.log.WithError(err).WithField("op", "list").Error("decode collection failed")
		return nil, &FetchError{Kind: c.ep.Kind, Op: "list", Status: resp.Status, Message: err.Error(), Err: err}
	}
	observe(c.ep.Kind, "list", start, true)
	c.log.WithFields(logrus.Fields{"op": "list", "count": len(items)}).Debug("fetched collection")
	return items, nil
}

// GetByID returns (nil, nil) when the backend reports the record absent.
func (c *Client[T, C, U]) GetByID(ctx context.Context, id int64) (*T, error) {
	start := time.Now()
	fields := logrus.Fields{"op": "get", "id": id}
	resp, err := c.rest.Do(ctx, http.MethodGet, c.ep.Get, c.ep.idQuery(id), nil)
	if err != nil {
		var statusErr *rest.StatusError
		if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
			observe(c.ep.Kind, "get", start, true)
			c.log.WithFields(fields).Debug("record not found")
			return nil, nil
		}
		observe(c.ep.Kind, "get", start, false)
		c.log.WithError(err).WithFields(fields).Error("fetch record failed")
		return nil, c.fetchError("get", id, err)
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		observe(c.ep.Kind, "get", start, true)
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		observe(c.ep.Kind, "get", start, false)
		c.log.WithError(err).WithFields(fields).Error("decode record failed")
		return nil, &FetchError{Kind: c.ep.Kind, Op: "get", ID: id, Status: resp.Status, Message: err.Error(), Err: err}
	}
	observe(c.ep.Kind, "get", start, true)
	return &out, nil
}

func (c *Client[T, C, U]) Create(ctx context.Context, payload C) MutationResult[T] {
	return c.mutate(ctx, "create", http.MethodPost, c.ep.Create, payload)
}

func (c *Client[T, C, U]) Update(ctx context.Context, payload U) MutationResult[T] {
	return c.mutate(ctx, "update", http.MethodPut, c.ep.Update, payload)
}

func (c *Client[T, C, U]) mutate(ctx context.Context, op, method, path string, payload any) MutationResult[T] {
	start := time.Now()
	resp, err := c.rest.Do(ctx, method, path, nil, payload)
	if err != nil {
		observe(c.ep.Kind, op, start, false)
		msg := MessageOf(err)
		c.log.WithError(err).WithField("op", op).Warn("mutation rejected")
		return MutationResult[T]{Error: msg}
	}
	observe(c.ep.Kind, op, start, true)
	c.log.WithField("op", op).Info("mutation accepted")

	result := MutationResult[T]{Success: true}
	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var out T
		if err := json.Unmarshal(body, &out); err == nil {
			result.Data = &out
		}
	}
	return result
}

func (c *Client[T, C, U]) Delete(ctx context.Context, id int64) MutationResult[struct{}] {
	start := time.Now()
	fields := logrus.Fields{"op": "delete", "id": id}
	if _, err := c.rest.Do(ctx, http.MethodDelete, c.ep.Delete, c.ep.idQuery(id), nil); err != nil {
		observe(c.ep.Kind, "delete", start, false)
		c.log.WithError(err).WithFields(fields).Warn("delete rejected")
		return MutationResult[struct{}]{Error: MessageOf(err)}
	}
	observe(c.ep.Kind, "delete", start, true)
	c.log.WithFields(fields).Info("record deleted")
	if c.publisher != nil {
		c.publisher.Publish(&DeletedEvent{Kind: c.ep.Kind, ID: id})
	}
	return MutationResult[struct{}]{Success: true}
}

// DeleteMany deletes every id concurrently and waits for all of them to settle.
func (c *Client[T, C, U]) DeleteMany(ctx context.Context, ids []int64) BatchResult {
	results := make([]MutationResult[struct{}], len(ids))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.Delete(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{Success: true}
	for i, res := range results {
		if res.Success {
			out.Succeeded = append(out.Succeeded, ids[i])
			continue
		}
		out.Failed = append(out.Failed, ids[i])
		if out.Success {
			out.Success = false
			out.Error = res.Error
		}
	}
	if !out.Success {
		c.log.WithFields(logrus.Fields{
			"op":        "delete_many",
			"succeeded": out.Succeeded,
			"failed":    out.Failed,
		}).Warn("batch delete partially failed")
	}
	return out
}

func (c *Client[T, C, U]) fetchError(op string, id int64, err error) *FetchError {
	fe := &FetchError{Kind: c.ep.Kind, Op: op, ID: id, Message: MessageOf(err), Err: err}
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		fe.Status = statusErr.Status
	}
	return fe
}

// MessageOf prefers the backend's structured message and falls back to the
// transport error text.
func MessageOf(err error) string {
	if err == nil {
		return unknownError
	}
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownError
}

// DecodeList accepts a bare JSON array or an object wrapping the array under
// one of the envelope keys (or the generic "entities", "data", "items").
func DecodeList[T any](body []byte, envelopes ...string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}
	switch body[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, errors.Wrap(err, "decode array")
		}
		return items, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, errors.Wrap(err, "decode envelope")
		}
		keys := append(append([]string{}, envelopes...), "entities", "data", "items")
		for _, key := range keys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			return DecodeList[T](raw)
		}
		return nil, errors.Errorf("unexpected list envelope, expected one of %v", keys)
	default:
		return nil, errors.New("unexpected list response")
	}
}

// Lookup is a read-only collection used to fill select options.
type Lookup[T any] struct {
	rest      *rest.Client
	kind      string
	path      string
	envelopes []string
	log       logrus.FieldLogger
}

func NewLookup[T any](transport *rest.Client, kind, path string, logger logrus.FieldLogger, envelopes ...string) *Lookup[T] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Lookup[T]{
		rest:      transport,
		kind:      kind,
		path:      path,
		envelopes: envelopes,
		log:       logger.WithField("entity", kind),
	}
}

func (l *Lookup[T]) ListAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	resp, err := l.rest.Do(ctx, http.MethodGet, l.path, nil, nil)
	if err != nil {
		observe(l.kind, "list", start, false)
		l.log.WithError(err).WithField("op", "list").Warn("fetch lookup failed")
		return nil, &FetchError{Kind: l.kind, Op: "list", Message: MessageOf(err), Err: err}
	}
	items, err := DecodeList[T](resp.Body, l.envelopes...)
	if err != nil {
		observe(l.kind, "list", start, false)
		return nil, &FetchError{Kind: l.kind, Op: "list", Status: resp.Status, Message: err.Error(), Err: err}
	}
	observe(l.kind, "list", start, true)
	return items, nil
}

// HealthCacheTTL is how long Status reuses the last ping outcome.
const HealthCacheTTL = 15 * time.Second

// Health reports whether the backend answers its health endpoint in time.
type Health struct {
	rest    *rest.Client
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group

	mu      sync.Mutex
	checked time.Time
	lastErr error
}

func NewHealth(transport *rest.Client, timeout time.Duration) *Health {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Health{rest: transport, timeout: timeout, ttl: HealthCacheTTL, now: time.Now}
}

func (h *Health) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	_, err := h.rest.Do(ctx, http.MethodGet, "/health", nil, nil)

	h.mu.Lock()
	h.checked = h.now()
	h.lastErr = err
	h.mu.Unlock()
	return err
}

// Status returns the last ping outcome while it is younger than the cache TTL
// and pings otherwise. Concurrent callers share one ping.
func (h *Health) Status(ctx context.Context) error {
	h.mu.Lock()
	fresh := !h.checked.IsZero() && h.now().Sub(h.checked) < h.ttl
	lastErr := h.lastErr
	h.mu.Unlock()
	if fresh {
		return lastErr
	}
	ch := h.group.DoChan("health", func() (interface{}, error) {
		return nil, h.Ping(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the time and outcome of the most recent ping.
func (h *Health) Last() (time.Time, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checked, h.lastErr
}
