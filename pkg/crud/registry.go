package crud

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/iota-uz/org-console/pkg/constants"
)

// View is anything the registry can hold: list or form views.
type View interface {
	Close()
}

// Registry keeps view instances per browser session. Evicted or replaced
// views are closed so that late backend results are dropped.
type Registry struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, View]
}

func NewRegistry(size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = 1024
	}
	return &Registry{
		cache: expirable.NewLRU[string, View](size, func(_ string, v View) {
			v.Close()
		}, ttl),
	}
}

func registryKey(session, key string) string {
	return session + "|" + key
}

// Get returns the view stored under key when it has type V.
func Get[V View](r *Registry, session, key string) (V, bool) {
	var zero V
	v, ok := r.cache.Get(registryKey(session, key))
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Put stores v, closing whatever view held the key before.
func (r *Registry) Put(session, key string, v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey(session, key)
	if old, ok := r.cache.Peek(k); ok && old != v {
		r.cache.Remove(k)
	}
	r.cache.Add(k, v)
}

// GetOrCreate returns the stored view of type V or stores a new one.
func GetOrCreate[V View](r *Registry, session, key string, create func() V) V {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey(session, key)
	if v, ok := r.cache.Get(k); ok {
		if typed, ok := v.(V); ok {
			return typed
		}
		r.cache.Remove(k)
	}
	v := create()
	r.cache.Add(k, v)
	return v
}

func (r *Registry) Remove(session, key string) {
	r.cache.Remove(registryKey(session, key))
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge closes and drops every view.
func (r *Registry) Purge() {
	r.cache.Purge()
}

func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, constants.SessionKey, session)
}

// UseSession returns the view session id set by the session middleware.
func UseSession(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(constants.SessionKey).(string)
	return s, ok && s != ""
}
