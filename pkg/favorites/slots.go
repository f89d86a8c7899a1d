package favorites

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// FileSlot keeps the collection in one JSON file, replaced atomically on write.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (f *FileSlot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FileSlot) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.Wrap(err, "create dirs")
	}
	tmp, err := os.CreateTemp(dir, ".favorites-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// MemorySlot is a process-local slot. Writes counts flushes.
type MemorySlot struct {
	mu     sync.Mutex
	data   []byte
	writes int
	err    error
}

func NewMemorySlot(initial []byte) *MemorySlot {
	return &MemorySlot{data: slices.Clone(initial)}
}

func (m *MemorySlot) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data), nil
}

func (m *MemorySlot) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data = slices.Clone(data)
	m.writes++
	return nil
}

// FailWrites makes subsequent writes return err. Pass nil to recover.
func (m *MemorySlot) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemorySlot) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemorySlot) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.data)
}
