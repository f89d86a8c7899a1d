package crud

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/resource"
)

var (
	ErrBusy           = errors.New("operation already in flight")
	ErrClosed         = errors.New("view closed")
	ErrNothingPending = errors.New("no delete awaiting confirmation")
	ErrNotReady       = errors.New("view is not ready")
)

const (
	msgSelectAtLeastOne = "Common.SelectAtLeastOne"
	msgDataRefreshed    = "Common.DataRefreshed"
)

type ListState int

const (
	ListIdle ListState = iota
	ListLoading
	ListLoaded
	ListLoadError
)

type DeleteState int

const (
	DeleteIdle DeleteState = iota
	DeleteConfirmPending
	DeleteDeleting
)

type ViewOptions struct {
	Logger logrus.FieldLogger
	Now    func() time.Time
}

func (o ViewOptions) logger() logrus.FieldLogger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// ListSnapshot is a consistent copy of a list view for rendering.
type ListSnapshot[T any] struct {
	State       ListState
	DeleteState DeleteState
	Items       []T
	Selected    map[int64]bool
	AllSelected bool
	Error       string
	Confirm     string
	Alert       *Alert
}

func (s ListSnapshot[T]) SelectedCount() int {
	return len(s.Selected)
}

// ListView drives the grid of one entity kind: loading, selection and
// confirmed batch delete. It is safe for concurrent use.
type ListView[T any] struct {
	res      ListResource[T]
	id       func(T) int64
	basePath string
	msgs     Messages
	tr       Translator
	log      logrus.FieldLogger
	alerts   *Notifier

	mu          sync.Mutex
	state       ListState
	deleteState DeleteState
	loading     bool
	closed      bool
	items       []T
	selection   map[int64]struct{}
	loadErr     string
	confirm     string
}

func NewListView[T, C, U, D any](schema Schema[T, C, U, D], res ListResource[T], tr Translator, opts ViewOptions) *ListView[T] {
	return &ListView[T]{
		res:       res,
		id:        schema.ID,
		basePath:  schema.BasePath(),
		msgs:      schema.Messages(),
		tr:        tr,
		log:       opts.logger().WithField("view", schema.Kind()+".list"),
		alerts:    NewNotifier(opts.Now, 0),
		selection: map[int64]struct{}{},
	}
}

// Mount loads the collection.
func (v *ListView[T]) Mount(ctx context.Context) error {
	return v.load(ctx, false)
}

// Refresh reloads the collection and confirms it with an info alert.
func (v *ListView[T]) Refresh(ctx context.Context) error {
	if err := v.load(ctx, false); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == ListLoaded && !v.closed {
		v.alerts.Show(SeverityInfo, v.tr.T(msgDataRefreshed))
	}
	return nil
}

// load replaces the collection. quiet keeps the current alert.
func (v *ListView[T]) load(ctx context.Context, quiet bool) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.loading || v.deleteState == DeleteDeleting {
		v.mu.Unlock()
		return ErrBusy
	}
	v.loading = true
	v.state = ListLoading
	v.loadErr = ""
	v.mu.Unlock()

	items, err := v.res.ListAll(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if v.closed {
		v.log.Debug("discarding list result for closed view")
		return nil
	}
	v.selection = map[int64]struct{}{}
	if err != nil {
		v.state = ListLoadError
		v.items = nil
		v.loadErr = v.messageOf(err, v.msgs.LoadFailed)
		v.log.WithError(err).Warn("list load failed")
		return nil
	}
	v.items = items
	v.state = ListLoaded
	if len(items) == 0 && !quiet {
		v.alerts.Show(SeverityInfo, v.tr.T(v.msgs.Empty))
	}
	return nil
}

// RowLink is the edit route for a row.
func (v *ListView[T]) RowLink(id int64) string {
	return v.basePath + "/edit/" + strconv.FormatInt(id, 10)
}

// Toggle flips one loaded row in or out of the selection. Unknown ids are ignored.
func (v *ListView[T]) Toggle(id int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.selection[id]; ok {
		delete(v.selection, id)
		return
	}
	if v.loaded(id) {
		v.selection[id] = struct{}{}
	}
}

// Select replaces the selection with the loaded rows among ids.
func (v *ListView[T]) Select(ids ...int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if v.loaded(id) {
			v.selection[id] = struct{}{}
		}
	}
}

func (v *ListView[T]) loaded(id int64) bool {
	return slices.ContainsFunc(v.items, func(item T) bool { return v.id(item) == id })
}

// SelectAll selects every loaded row.
func (v *ListView[T]) SelectAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = make(map[int64]struct{}, len(v.items))
	for _, item := range v.items {
		v.selection[v.id(item)] = struct{}{}
	}
}

func (v *ListView[T]) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = map[int64]struct{}{}
}

// RequestDelete opens the confirmation for the current selection. With
// nothing selected it only shows a warning and returns false.
func (v *ListView[T]) RequestDelete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteState == DeleteDeleting {
		return false
	}
	n := len(v.selection)
	if n == 0 {
		v.alerts.Show(SeverityWarning, v.tr.T(msgSelectAtLeastOne))
		return false
	}
	if n == 1 {
		v.confirm = v.tr.T(v.msgs.ConfirmOne)
	} else {
		v.confirm = v.tr.T(v.msgs.ConfirmMany, map[string]interface{}{"Count": n})
	}
	v.deleteState = DeleteConfirmPending
	return true
}

func (v *ListView[T]) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deleteState == DeleteConfirmPending {
		v.deleteState = DeleteIdle
		v.confirm = ""
	}
}

// ConfirmDelete deletes the selection. On success the rows are filtered out
// locally. On failure the error is shown and the collection is fetched again.
func (v *ListView[T]) ConfirmDelete(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	switch v.deleteState {
	case DeleteDeleting:
		v.mu.Unlock()
		return ErrBusy
	case DeleteIdle:
		v.mu.Unlock()
		return ErrNothingPending
	}
	if v.loading {
		v.mu.Unlock()
		return ErrBusy
	}
	ids := make([]int64, 0, len(v.selection))
	for id := range v.selection {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	v.deleteState = DeleteDeleting
	v.mu.Unlock()

	res := v.res.DeleteMany(ctx, ids)

	v.mu.Lock()
	v.deleteState = DeleteIdle
	v.confirm = ""
	if v.closed {
		v.mu.Unlock()
		v.log.Debug("discarding delete result for closed view")
		return nil
	}
	if res.Success {
		removed := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			removed[id] = struct{}{}
		}
		kept := make([]T, 0, len(v.items))
		for _, item := range v.items {
			if _, gone := removed[v.id(item)]; !gone {
				kept = append(kept, item)
			}
		}
		v.items = kept
		v.selection = map[int64]struct{}{}
		v.alerts.Show(SeveritySuccess, v.tr.T(v.msgs.Deleted, map[string]interface{}{"Count": len(ids)}))
		v.mu.Unlock()
		v.log.WithField("count", len(ids)).Info("batch delete succeeded")
		return nil
	}

	msg := res.Error
	if msg == "" {
		msg = v.tr.T(v.msgs.DeleteFailed)
	}
	v.alerts.Show(SeverityError, msg)
	v.mu.Unlock()
	v.log.WithFields(logrus.Fields{
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
	}).Warn("batch delete failed, reloading")

	return v.load(ctx, true)
}

func (v *ListView[T]) DismissAlert() {
	v.alerts.Dismiss()
}

// Close detaches the view. Results arriving afterwards are dropped.
func (v *ListView[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *ListView[T]) Snapshot() ListSnapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	selected := make(map[int64]bool, len(v.selection))
	for id := range v.selection {
		selected[id] = true
	}
	return ListSnapshot[T]{
		State:       v.state,
		DeleteState: v.deleteState,
		Items:       slices.Clone(v.items),
		Selected:    selected,
		AllSelected: len(v.items) > 0 && len(v.selection) == len(v.items),
		Error:       v.loadErr,
		Confirm:     v.confirm,
		Alert:       v.alerts.Current(),
	}
}

func (v *ListView[T]) messageOf(err error, fallback string) string {
	var fe *resource.FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return v.tr.T(fallback)
}
