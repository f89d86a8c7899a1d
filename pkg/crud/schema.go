// Package crud holds the list and form view controllers shared by every
// entity module, and the HTTP controller that drives them.
package crud

import (
	"context"
	"time"

	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/resource"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

const (
	// SaveRedirectDelay keeps the success toast visible before returning to the list.
	SaveRedirectDelay   = 2000 * time.Millisecond
	DeleteRedirectDelay = 1500 * time.Millisecond
	// ErrorSeparator joins validation messages into one notification.
	ErrorSeparator = "، "
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldEmail    FieldKind = "email"
	FieldTel      FieldKind = "tel"
	FieldTextArea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// Field describes one input of an entity form. Name is the draft's form key,
// Label and Placeholder are message ids.
type Field struct {
	Name        string
	Label       string
	Placeholder string
	Kind        FieldKind
	Required    bool
	// Options names the lookup filling a select field.
	Options string
	// EditOnly fields are hidden in create mode.
	EditOnly bool
}

// Column is one grid column. Label is a message id.
type Column struct {
	Label string
	Width int
}

type Option struct {
	Value string
	Label string
}

// Messages are the message ids an entity contributes to the shared views.
// Deleted and ConfirmMany receive {{.Count}}.
type Messages struct {
	ListTitle          string
	AddTitle           string
	EditTitle          string
	AddButton          string
	Empty              string
	LoadFailed         string
	ConfirmOne         string
	ConfirmMany        string
	Deleted            string
	DeleteFailed       string
	Created            string
	CreateFailed       string
	Updated            string
	UpdateFailed       string
	RecordDeleted      string
	RecordDeleteFailed string
	FetchFailed        string
	NotFound           string
}

// Schema binds an entity's record T, create payload C, update payload U and
// form draft D to the shared views.
type Schema[T, C, U, D any] interface {
	Kind() string
	// BasePath is the list route, e.g. "/modules/departments".
	BasePath() string
	ID(record T) int64
	Messages() Messages

	Columns() []Column
	Row(record T, tr Translator) []string

	Fields() []Field
	Empty() D
	FromRecord(record T) D
	// Validate returns the message ids of every violated rule, in field order.
	Validate(draft D, mode Mode) []string
	CreatePayload(draft D) C
	UpdatePayload(id int64, draft D, original T) U
	// Options loads select options keyed by Field.Options. self is the id
	// being edited, zero in create mode.
	Options(ctx context.Context, self int64) map[string][]Option
}

// ListResource is the part of a resource client the list view needs.
type ListResource[T any] interface {
	ListAll(ctx context.Context) ([]T, error)
	DeleteMany(ctx context.Context, ids []int64) resource.BatchResult
}

// FormResource is the part of a resource client the form view needs.
type FormResource[T, C, U any] interface {
	GetByID(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, payload C) resource.MutationResult[T]
	Update(ctx context.Context, payload U) resource.MutationResult[T]
	Delete(ctx context.Context, id int64) resource.MutationResult[struct{}]
}

// Resource is satisfied by *resource.Client.
type Resource[T, C, U any] interface {
	ListResource[T]
	FormResource[T, C, U]
}

// Translator resolves message ids for the session's locale.
type Translator = intl.Translator
