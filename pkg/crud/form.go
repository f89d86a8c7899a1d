package crud

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/wI2L/jsondiff"

	"github.com/iota-uz/org-console/pkg/resource"
)

const msgConfirmRecordDelete = "Common.ConfirmRecordDelete"

type FormState int

const (
	FormNew FormState = iota
	FormLoading
	FormReady
	FormLoadError
	FormSubmitting
	FormSubmitSuccess
	FormSubmitError
)

// Redirect asks the page to navigate to Path once After has elapsed.
type Redirect struct {
	Path  string
	After time.Duration
}

// Outcome is what a submit or delete produced for the page.
type Outcome struct {
	Alert    *Alert
	Redirect *Redirect
}

type FormSnapshot[D any] struct {
	Mode     Mode
	State    FormState
	ID       int64
	Draft    D
	Values   url.Values
	Options  map[string][]Option
	Alert    *Alert
	Error    string
	Errors   []string
	Confirm  string
	Redirect *Redirect
	Busy     bool
	// Label names the loaded record, taken from its first list column.
	Label string
}

// FormView drives the create or edit form of one record.
type FormView[T, C, U, D any] struct {
	schema Schema[T, C, U, D]
	res    FormResource[T, C, U]
	tr     Translator
	log    logrus.FieldLogger
	alerts *Notifier
	mode   Mode
	id     int64

	mu            sync.Mutex
	state         FormState
	draft         D
	original      *T
	options       map[string][]Option
	optionsLoaded bool
	loadErr       string
	errs          []string
	confirm       string
	deleting      bool
	closed        bool
	redirect      *Redirect
}

func NewCreateForm[T, C, U, D any](schema Schema[T, C, U, D], res FormResource[T, C, U], tr Translator, opts ViewOptions) *FormView[T, C, U, D] {
	return &FormView[T, C, U, D]{
		schema: schema,
		res:    res,
		tr:     tr,
		log:    opts.logger().WithFields(logrus.Fields{"view": schema.Kind() + ".form", "mode": ModeCreate.String()}),
		alerts: NewNotifier(opts.Now, DuplicateWindow),
		mode:   ModeCreate,
		state:  FormNew,
		draft:  schema.Empty(),
	}
}

// NewEditForm starts in Loading; Mount fetches the record.
func NewEditForm[T, C, U, D any](schema Schema[T, C, U, D], res FormResource[T, C, U], tr Translator, id int64, opts ViewOptions) *FormView[T, C, U, D] {
	return &FormView[T, C, U, D]{
		schema: schema,
		res:    res,
		tr:     tr,
		log:    opts.logger().WithFields(logrus.Fields{"view": schema.Kind() + ".form", "mode": ModeEdit.String(), "id": id}),
		alerts: NewNotifier(opts.Now, DuplicateWindow),
		mode:   ModeEdit,
		id:     id,
		state:  FormLoading,
		draft:  schema.Empty(),
	}
}

func (f *FormView[T, C, U, D]) Mode() Mode {
	return f.mode
}

// Mount loads select options once and, in edit mode, the record.
func (f *FormView[T, C, U, D]) Mount(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.state == FormSubmitting || f.deleting {
		f.mu.Unlock()
		return ErrBusy
	}
	loadOptions := !f.optionsLoaded
	f.optionsLoaded = true
	if f.mode == ModeEdit {
		f.state = FormLoading
		f.loadErr = ""
	}
	f.mu.Unlock()

	var options map[string][]Option
	if loadOptions {
		options = f.schema.Options(ctx, f.id)
	}

	var (
		record *T
		err    error
	)
	if f.mode == ModeEdit {
		record, err = f.res.GetByID(ctx, f.id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		f.log.Debug("discarding form load for closed view")
		return nil
	}
	if loadOptions {
		f.options = options
	}
	if f.mode == ModeCreate {
		return nil
	}
	switch {
	case err != nil:
		f.state = FormLoadError
		f.loadErr = f.fetchMessage(err)
		f.log.WithError(err).Warn("record load failed")
	case record == nil:
		f.state = FormLoadError
		f.loadErr = f.tr.T(f.schema.Messages().NotFound)
		f.log.Info("record not found")
	default:
		f.original = record
		f.draft = f.schema.FromRecord(*record)
		f.state = FormReady
	}
	return nil
}

// Retry reloads the record and the select options.
func (f *FormView[T, C, U, D]) Retry(ctx context.Context) error {
	f.mu.Lock()
	f.optionsLoaded = false
	f.mu.Unlock()
	return f.Mount(ctx)
}

// Apply replaces the draft.
func (f *FormView[T, C, U, D]) Apply(draft D) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.editable() {
		return ErrNotReady
	}
	f.draft = draft
	return nil
}

// SetField changes one draft field by its form key.
func (f *FormView[T, C, U, D]) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.editable() {
		return ErrNotReady
	}
	values, err := EncodeDraft(f.draft)
	if err != nil {
		return err
	}
	values.Set(name, value)
	draft, err := DecodeDraft[D](values)
	if err != nil {
		return err
	}
	f.draft = draft
	return nil
}

func (f *FormView[T, C, U, D]) editable() bool {
	switch f.state {
	case FormLoading, FormLoadError:
		return false
	}
	return !f.closed
}

func (f *FormView[T, C, U, D]) Validate() Validation {
	f.mu.Lock()
	draft := f.draft
	f.mu.Unlock()
	return translateAll(f.tr, f.schema.Validate(draft, f.mode))
}

// Submit validates the draft and sends it. Invalid drafts never reach the
// backend; a rejected save keeps the draft as typed.
func (f *FormView[T, C, U, D]) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	switch f.state {
	case FormSubmitting:
		f.mu.Unlock()
		return Outcome{}, ErrBusy
	case FormLoading, FormLoadError, FormSubmitSuccess:
		f.mu.Unlock()
		return Outcome{}, ErrNotReady
	}
	if f.deleting {
		f.mu.Unlock()
		return Outcome{}, ErrBusy
	}

	v := translateAll(f.tr, f.schema.Validate(f.draft, f.mode))
	f.errs = v.Errors
	if !v.Valid {
		f.alerts.Show(SeverityError, v.Message())
		out := Outcome{Alert: f.alerts.Current()}
		f.mu.Unlock()
		return out, nil
	}

	draft := f.draft
	original := f.original
	f.state = FormSubmitting
	f.mu.Unlock()

	msgs := f.schema.Messages()
	var (
		res       resource.MutationResult[T]
		okMsg     string
		failedMsg string
	)
	if f.mode == ModeCreate {
		res = f.res.Create(ctx, f.schema.CreatePayload(draft))
		okMsg, failedMsg = msgs.Created, msgs.CreateFailed
	} else {
		payload := f.schema.UpdatePayload(f.id, draft, *original)
		f.logChanges(f.schema.UpdatePayload(f.id, f.schema.FromRecord(*original), *original), payload)
		res = f.res.Update(ctx, payload)
		okMsg, failedMsg = msgs.Updated, msgs.UpdateFailed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		f.log.Debug("discarding submit result for closed view")
		return Outcome{}, nil
	}
	if !res.Success {
		f.state = FormSubmitError
		msg := res.Error
		if msg == "" {
			msg = f.tr.T(failedMsg)
		}
		f.alerts.Show(SeverityError, msg)
		return Outcome{Alert: f.alerts.Current()}, nil
	}
	f.state = FormSubmitSuccess
	if res.Data != nil && f.mode == ModeEdit {
		f.original = res.Data
	}
	f.alerts.Show(SeveritySuccess, f.tr.T(okMsg))
	f.redirect = &Redirect{Path: f.schema.BasePath(), After: SaveRedirectDelay}
	return Outcome{Alert: f.alerts.Current(), Redirect: f.redirect}, nil
}

// RequestDelete asks for confirmation before deleting the edited record.
func (f *FormView[T, C, U, D]) RequestDelete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode != ModeEdit || f.deleting || f.closed {
		return false
	}
	switch f.state {
	case FormReady, FormSubmitError:
	default:
		return false
	}
	f.confirm = f.tr.T(msgConfirmRecordDelete)
	return true
}

func (f *FormView[T, C, U, D]) CancelDelete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirm = ""
}

func (f *FormView[T, C, U, D]) ConfirmDelete(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if f.deleting || f.state == FormSubmitting {
		f.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	if f.confirm == "" {
		f.mu.Unlock()
		return Outcome{}, ErrNothingPending
	}
	f.deleting = true
	f.mu.Unlock()

	res := f.res.Delete(ctx, f.id)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleting = false
	f.confirm = ""
	if f.closed {
		return Outcome{}, nil
	}
	msgs := f.schema.Messages()
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = f.tr.T(msgs.RecordDeleteFailed)
		}
		f.alerts.Show(SeverityError, msg)
		return Outcome{Alert: f.alerts.Current()}, nil
	}
	f.state = FormSubmitSuccess
	f.alerts.Show(SeveritySuccess, f.tr.T(msgs.RecordDeleted))
	f.redirect = &Redirect{Path: f.schema.BasePath(), After: DeleteRedirectDelay}
	return Outcome{Alert: f.alerts.Current(), Redirect: f.redirect}, nil
}

func (f *FormView[T, C, U, D]) DismissAlert() {
	f.alerts.Dismiss()
}

func (f *FormView[T, C, U, D]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *FormView[T, C, U, D]) Snapshot() FormSnapshot[D] {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := EncodeDraft(f.draft)
	if err != nil {
		f.log.WithError(err).Error("encode draft failed")
		values = url.Values{}
	}
	return FormSnapshot[D]{
		Mode:     f.mode,
		State:    f.state,
		ID:       f.id,
		Draft:    f.draft,
		Values:   values,
		Options:  f.options,
		Alert:    f.alerts.Current(),
		Error:    f.loadErr,
		Errors:   append([]string(nil), f.errs...),
		Confirm:  f.confirm,
		Redirect: f.redirect,
		Busy:     f.state == FormSubmitting || f.deleting,
		Label:    f.label(),
	}
}

func (f *FormView[T, C, U, D]) label() string {
	if f.original == nil {
		return ""
	}
	if cells := f.schema.Row(*f.original, f.tr); len(cells) > 0 {
		return cells[0]
	}
	return ""
}

func (f *FormView[T, C, U, D]) fetchMessage(err error) string {
	var fe *resource.FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return f.tr.T(f.schema.Messages().FetchFailed)
}

func (f *FormView[T, C, U, D]) logChanges(before, after U) {
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		f.log.WithError(err).Debug("diff update payload failed")
		return
	}
	paths := make([]string, 0, len(patch))
	for _, op := range patch {
		paths = append(paths, string(op.Path))
	}
	f.log.WithField("changed", paths).Info("submitting update")
}
