package itf

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Request is a console request sent through the test router. The view
// session cookie is carried between requests of one environment.
type Request struct {
	env     *TestEnvironment
	tb      testing.TB
	method  string
	target  string
	body    io.Reader
	headers http.Header
}

func (te *TestEnvironment) GET(tb testing.TB, target string) *Request {
	return te.newRequest(tb, http.MethodGet, target)
}

func (te *TestEnvironment) POST(tb testing.TB, target string) *Request {
	return te.newRequest(tb, http.MethodPost, target)
}

func (te *TestEnvironment) DELETE(tb testing.TB, target string) *Request {
	return te.newRequest(tb, http.MethodDelete, target)
}

func (te *TestEnvironment) newRequest(tb testing.TB, method, target string) *Request {
	tb.Helper()
	return &Request{env: te, tb: tb, method: method, target: target, headers: http.Header{}}
}

func (r *Request) Form(values url.Values) *Request {
	r.body = strings.NewReader(values.Encode())
	r.headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func (r *Request) JSON(v any) *Request {
	data, err := json.Marshal(v)
	if err != nil {
		r.tb.Fatal(err)
	}
	r.body = strings.NewReader(string(data))
	r.headers.Set("Content-Type", "application/json")
	return r
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// HTMX marks the request as an htmx swap, which skips the layout.
func (r *Request) HTMX() *Request {
	return r.Header("Hx-Request", "true")
}

func (r *Request) Do() *Response {
	r.tb.Helper()
	body := r.body
	if body == nil {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(r.method, r.target, body)
	req.Header = r.headers.Clone()
	for _, c := range r.env.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.env.Handler.ServeHTTP(rec, req)
	r.env.keepCookies(rec.Result().Cookies())
	return &Response{tb: r.tb, rec: rec}
}

func (te *TestEnvironment) keepCookies(cookies []*http.Cookie) {
	for _, c := range cookies {
		replaced := false
		for i, existing := range te.cookies {
			if existing.Name == c.Name {
				te.cookies[i] = c
				replaced = true
			}
		}
		if !replaced {
			te.cookies = append(te.cookies, c)
		}
	}
}

type Response struct {
	tb  testing.TB
	rec *httptest.ResponseRecorder
}

func (r *Response) Status() int {
	return r.rec.Code
}

func (r *Response) Body() string {
	return r.rec.Body.String()
}

func (r *Response) Header() http.Header {
	return r.rec.Header()
}

func (r *Response) AssertStatus(want int) *Response {
	r.tb.Helper()
	if r.rec.Code != want {
		r.tb.Fatalf("expected status %d, got %d: %s", want, r.rec.Code, r.rec.Body.String())
	}
	return r
}

func (r *Response) AssertContains(parts ...string) *Response {
	r.tb.Helper()
	body := r.rec.Body.String()
	for _, part := range parts {
		if !strings.Contains(body, part) {
			r.tb.Errorf("expected body to contain %q", part)
		}
	}
	return r
}

func (r *Response) AssertNotContains(parts ...string) *Response {
	r.tb.Helper()
	body := r.rec.Body.String()
	for _, part := range parts {
		if strings.Contains(body, part) {
			r.tb.Errorf("expected body not to contain %q", part)
		}
	}
	return r
}

// DecodeJSON unmarshals the response body into v.
func (r *Response) DecodeJSON(v any) *Response {
	r.tb.Helper()
	if err := json.Unmarshal(r.rec.Body.Bytes(), v); err != nil {
		r.tb.Fatalf("decode response: %v\n%s", err, r.rec.Body.String())
	}
	return r
}

// Backend is a scriptable fake of the REST backend keyed by "METHOD /path".
type Backend struct {
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*http.Request
	bodies   []string
}

func NewBackend() *Backend {
	return &Backend{routes: map[string]http.HandlerFunc{}}
}

// On registers a handler for method and path.
func (b *Backend) On(method, path string, h http.HandlerFunc) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
	return b
}

// Reply registers a fixed JSON reply.
func (b *Backend) Reply(method, path string, status int, body string) *Backend {
	return b.On(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, r)
	b.bodies = append(b.bodies, string(data))
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(data)))
	h(w, r)
}

// Calls returns the bodies received for method and path, in arrival order.
func (b *Backend) Calls(method, path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for i, r := range b.requests {
		if r.Method == method && r.URL.Path == path {
			out = append(out, b.bodies[i])
		}
	}
	return out
}

// Queries returns the raw query of each call to method and path.
func (b *Backend) Queries(method, path string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, r := range b.requests {
		if r.Method == method && r.URL.Path == path {
			out = append(out, r.URL.RawQuery)
		}
	}
	return out
}
