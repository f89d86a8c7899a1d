package crud

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/iota-uz/org-console/pkg/logging"
	"github.com/iota-uz/org-console/pkg/resource"
)

type widget struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Budget string `json:"budget"`
	Active *bool  `json:"active,omitempty"`
}

type widgetPayload struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Budget string `json:"budget"`
	Active bool   `json:"active"`
}

type widgetDraft struct {
	Name   string `form:"name" validate:"notblank"`
	Budget string `form:"budget" validate:"budget,positive"`
	Parent string `form:"parent"`
	Active bool   `form:"active"`
}

type widgetSchema struct {
	mu          sync.Mutex
	optionCalls int
	lastSelf    int64
}

func (s *widgetSchema) Kind() string {
	return "widget"
}

func (s *widgetSchema) BasePath() string {
	return "/modules/widgets"
}

func (s *widgetSchema) ID(w widget) int64 {
	return w.ID
}

func (s *widgetSchema) Messages() Messages {
	return Messages{
		ListTitle:          "Widgets.List.Title",
		AddTitle:           "Widgets.Add.Title",
		EditTitle:          "Widgets.Edit.Title",
		Empty:              "Widgets.List.Empty",
		LoadFailed:         "Widgets.List.LoadFailed",
		ConfirmOne:         "Widgets.List.ConfirmOne",
		ConfirmMany:        "Widgets.List.ConfirmMany",
		Deleted:            "Widgets.List.Deleted",
		DeleteFailed:       "Widgets.List.DeleteFailed",
		Created:            "Widgets.Form.Created",
		CreateFailed:       "Widgets.Form.CreateFailed",
		Updated:            "Widgets.Form.Updated",
		UpdateFailed:       "Widgets.Form.UpdateFailed",
		RecordDeleted:      "Widgets.Form.Deleted",
		RecordDeleteFailed: "Widgets.Form.DeleteFailed",
		FetchFailed:        "Widgets.Form.FetchFailed",
		NotFound:           "Widgets.Form.NotFound",
	}
}

func (s *widgetSchema) Columns() []Column {
	return []Column{{Label: "Widgets.Fields.Name"}, {Label: "Widgets.Fields.Budget"}}
}

func (s *widgetSchema) Row(w widget, _ Translator) []string {
	return []string{w.Name, w.Budget}
}

func (s *widgetSchema) Fields() []Field {
	return []Field{
		{Name: "name", Label: "Widgets.Fields.Name", Kind: FieldText, Required: true},
		{Name: "budget", Label: "Widgets.Fields.Budget", Kind: FieldNumber, Required: true},
		{Name: "parent", Label: "Widgets.Fields.Parent", Kind: FieldSelect, Options: "parents"},
		{Name: "active", Label: "Widgets.Fields.Active", Kind: FieldCheckbox, EditOnly: true},
	}
}

func (s *widgetSchema) Empty() widgetDraft {
	return widgetDraft{Active: true}
}

func (s *widgetSchema) FromRecord(w widget) widgetDraft {
	active := true
	if w.Active != nil {
		active = *w.Active
	}
	return widgetDraft{Name: w.Name, Budget: w.Budget, Active: active}
}

func (s *widgetSchema) Validate(d widgetDraft, _ Mode) []string {
	return CheckStruct("Widgets", d)
}

func (s *widgetSchema) CreatePayload(d widgetDraft) widgetPayload {
	return widgetPayload{Name: d.Name, Budget: d.Budget, Active: true}
}

func (s *widgetSchema) UpdatePayload(id int64, d widgetDraft, _ widget) widgetPayload {
	return widgetPayload{ID: id, Name: d.Name, Budget: d.Budget, Active: d.Active}
}

func (s *widgetSchema) Options(_ context.Context, self int64) map[string][]Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.optionCalls++
	s.lastSelf = self
	var opts []Option
	for _, id := range []int64{1, 2, 3} {
		if id == self {
			continue
		}
		opts = append(opts, Option{Value: strconv.FormatInt(id, 10), Label: fmt.Sprintf("widget %d", id)})
	}
	return map[string][]Option{"parents": opts}
}

type fakeWidgets struct {
	mu        sync.Mutex
	items     []widget
	listErr   error
	listCalls int
	listGate  chan struct{}

	batch       *resource.BatchResult
	deleteCalls [][]int64

	record   *widget
	getErr   error
	getCalls int

	createRes resource.MutationResult[widget]
	updateRes resource.MutationResult[widget]
	created   []widgetPayload
	updated   []widgetPayload

	deleteRes resource.MutationResult[struct{}]
	deleted   []int64
}

func (f *fakeWidgets) ListAll(_ context.Context) ([]widget, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]widget(nil), f.items...), nil
}

func (f *fakeWidgets) DeleteMany(_ context.Context, ids []int64) resource.BatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, ids)
	if f.batch != nil {
		return *f.batch
	}
	return resource.BatchResult{Success: true, Succeeded: ids}
}

func (f *fakeWidgets) GetByID(_ context.Context, _ int64) (*widget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	return f.record, f.getErr
}

func (f *fakeWidgets) Create(_ context.Context, p widgetPayload) resource.MutationResult[widget] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return f.createRes
}

func (f *fakeWidgets) Update(_ context.Context, p widgetPayload) resource.MutationResult[widget] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, p)
	return f.updateRes
}

func (f *fakeWidgets) Delete(_ context.Context, id int64) resource.MutationResult[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteRes
}

// echoTranslator returns the message id, suffixed with the count when one is passed.
type echoTranslator struct{}

func (echoTranslator) T(msgID string, data ...map[string]interface{}) string {
	if len(data) > 0 {
		if n, ok := data[0]["Count"]; ok {
			return fmt.Sprintf("%s:%v", msgID, n)
		}
	}
	return msgID
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testOptions(clock *fakeClock) ViewOptions {
	opts := ViewOptions{Logger: logging.DiscardLogger()}
	if clock != nil {
		opts.Now = clock.Now
	}
	return opts
}

func sampleWidgets() []widget {
	return []widget{
		{ID: 1, Name: "alpha", Budget: "100"},
		{ID: 2, Name: "beta", Budget: "200"},
		{ID: 3, Name: "gamma", Budget: "300"},
		{ID: 4, Name: "delta", Budget: "400"},
	}
}
