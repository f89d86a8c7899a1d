package favorites

import (
	"context"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultType is assigned to items added without a category.
const DefaultType = "module"

// Item is the caller-supplied description of a shortcut.
type Item struct {
	ID   string `json:"id,omitempty" form:"id" validate:"required_without=Path"`
	Name string `json:"name" form:"name" validate:"required"`
	Path string `json:"path" form:"path" validate:"required_without=ID"`
	Icon string `json:"icon,omitempty" form:"icon"`
	Type string `json:"type,omitempty" form:"type"`
}

// Key is the item's id, or its path when no id was given.
func (i Item) Key() string {
	if id := strings.TrimSpace(i.ID); id != "" {
		return id
	}
	return strings.TrimSpace(i.Path)
}

// Entry is a persisted favorite.
type Entry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon,omitempty"`
	Type      string    `json:"type"`
	DateAdded time.Time `json:"dateAdded"`
}

// Group is a run of entries sharing a type, in first-seen order.
type Group struct {
	Type    string
	Entries []Entry
}

// Slot is a single named storage location holding the serialized collection.
// Read returns (nil, nil) when nothing was stored yet.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// Store holds the favorites collection in memory and flushes all of it to its
// slot after every mutation.
type Store struct {
	mu      sync.RWMutex
	slot    Slot
	entries []Entry
	now     func() time.Time
	log     logrus.FieldLogger
}

func NewStore(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot: slot,
		now:  time.Now,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the slot content. Absent or
// corrupt content yields an empty collection. A read failure also leaves the
// collection empty and is returned for the caller to log.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	data, err := s.slot.Read(ctx)
	if err != nil {
		return errors.Wrap(err, "favorites: read slot")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.WithError(err).Warn("favorites: stored collection is corrupt, starting empty")
		return nil
	}
	s.entries = dedupe(entries)
	return nil
}

// Add inserts the item unless an entry with the same key exists.
// It reports whether a new entry was created.
func (s *Store) Add(ctx context.Context, item Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.Key()
	if key == "" {
		return false, errors.New("favorites: item has neither id nor path")
	}
	if s.indexOf(key) >= 0 {
		return false, nil
	}
	s.entries = append(s.entries, s.newEntry(key, item))
	return true, s.flush(ctx)
}

// Remove deletes the entry with the given key. It reports whether one existed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.entries = slices.Delete(s.entries, idx, idx+1)
	return true, s.flush(ctx)
}

// Toggle removes the item when present, adds it otherwise, and returns
// whether it is a favorite afterwards.
func (s *Store) Toggle(ctx context.Context, item Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.Key()
	if key == "" {
		return false, errors.New("favorites: item has neither id nor path")
	}
	if idx := s.indexOf(key); idx >= 0 {
		s.entries = slices.Delete(s.entries, idx, idx+1)
		return false, s.flush(ctx)
	}
	s.entries = append(s.entries, s.newEntry(key, item))
	return true, s.flush(ctx)
}

// RemoveByPath drops every entry pointing at path and returns how many were removed.
func (s *Store) RemoveByPath(ctx context.Context, path string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e Entry) bool {
		return e.Path == path
	})
	removed := before - len(s.entries)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.flush(ctx)
}

func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.flush(ctx)
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// ListByType returns the entries of one type in insertion order.
func (s *Store) ListByType(typ string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Grouped buckets entries by type, groups ordered by first appearance.
func (s *Store) Grouped() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []Group
	index := map[string]int{}
	for _, e := range s.entries {
		i, ok := index[e.Type]
		if !ok {
			i = len(groups)
			index[e.Type] = i
			groups = append(groups, Group{Type: e.Type})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// Close releases the slot when it holds a connection.
func (s *Store) Close() error {
	if c, ok := s.slot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) newEntry(key string, item Item) Entry {
	typ := strings.TrimSpace(item.Type)
	if typ == "" {
		typ = DefaultType
	}
	return Entry{
		ID:        key,
		Name:      item.Name,
		Path:      item.Path,
		Icon:      item.Icon,
		Type:      typ,
		DateAdded: s.now().UTC(),
	}
}

// indexOf looks id up the way Item.Key derives it.
func (s *Store) indexOf(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.entries, func(e Entry) bool {
		return e.ID == id
	})
}

// flush must be called with mu held.
func (s *Store) flush(ctx context.Context) error {
	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "favorites: encode")
	}
	if err := s.slot.Write(ctx, data); err != nil {
		s.log.WithError(err).Error("favorites: flush failed")
		return errors.Wrap(err, "favorites: write slot")
	}
	return nil
}

func dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.ID == "" {
			e.ID = e.Path
		}
		if e.ID == "" {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		if e.Type == "" {
			e.Type = DefaultType
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
