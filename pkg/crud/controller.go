package crud

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/composables"
	"github.com/iota-uz/org-console/pkg/intl"
	"github.com/iota-uz/org-console/pkg/views"
)

// Controller serves the list, add and edit pages of one entity kind.
type Controller[T, C, U, D any] struct {
	schema   Schema[T, C, U, D]
	res      Resource[T, C, U]
	registry *Registry
	opts     ViewOptions
}

func NewController[T, C, U, D any](
	schema Schema[T, C, U, D],
	res Resource[T, C, U],
	registry *Registry,
	opts ViewOptions,
) *Controller[T, C, U, D] {
	return &Controller[T, C, U, D]{
		schema:   schema,
		res:      res,
		registry: registry,
		opts:     opts,
	}
}

func (c *Controller[T, C, U, D]) Key() string {
	return c.schema.BasePath()
}

// Kind is the entity kind served, matching resource.DeletedEvent.Kind.
func (c *Controller[T, C, U, D]) Kind() string {
	return c.schema.Kind()
}

// RecordPath is the edit route of one record.
func (c *Controller[T, C, U, D]) RecordPath(id int64) string {
	return c.schema.BasePath() + "/edit/" + strconv.FormatInt(id, 10)
}

func (c *Controller[T, C, U, D]) Register(r *mux.Router) {
	router := r.PathPrefix(c.schema.BasePath()).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("/refresh", c.Refresh).Methods(http.MethodPost)
	router.HandleFunc("/select/{id:[0-9]+}", c.ToggleRow).Methods(http.MethodPost)
	router.HandleFunc("/select-all", c.SelectAll).Methods(http.MethodPost)
	router.HandleFunc("/clear", c.ClearSelection).Methods(http.MethodPost)
	router.HandleFunc("/delete", c.RequestDelete).Methods(http.MethodPost)
	router.HandleFunc("/delete/confirm", c.ConfirmDelete).Methods(http.MethodPost)
	router.HandleFunc("/delete/cancel", c.CancelDelete).Methods(http.MethodPost)
	router.HandleFunc("/alert/dismiss", c.DismissAlert).Methods(http.MethodPost)

	router.HandleFunc("/add", c.GetNew).Methods(http.MethodGet)
	router.HandleFunc("/add", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/edit/{id:[0-9]+}", c.GetEdit).Methods(http.MethodGet)
	router.HandleFunc("/edit/{id:[0-9]+}", c.Update).Methods(http.MethodPost)
	router.HandleFunc("/edit/{id:[0-9]+}/delete", c.RequestRecordDelete).Methods(http.MethodPost)
	router.HandleFunc("/edit/{id:[0-9]+}/delete/confirm", c.ConfirmRecordDelete).Methods(http.MethodPost)
	router.HandleFunc("/edit/{id:[0-9]+}/delete/cancel", c.CancelRecordDelete).Methods(http.MethodPost)
}

func (c *Controller[T, C, U, D]) logger(ctx context.Context) logrus.FieldLogger {
	return composables.UseLogger(ctx).WithField("entity", c.schema.Kind())
}

func (c *Controller[T, C, U, D]) viewOptions(ctx context.Context) ViewOptions {
	opts := c.opts
	opts.Logger = c.logger(ctx)
	return opts
}

func (c *Controller[T, C, U, D]) listKey() string {
	return c.schema.Kind() + ".list"
}

func (c *Controller[T, C, U, D]) formKey(id int64) string {
	if id == 0 {
		return c.schema.Kind() + ".form.new"
	}
	return c.schema.Kind() + ".form." + strconv.FormatInt(id, 10)
}

// listView returns the session's list view, mounting a new one when there is none.
func (c *Controller[T, C, U, D]) listView(r *http.Request) *ListView[T] {
	ctx := r.Context()
	session, _ := UseSession(ctx)
	mounted := false
	v := GetOrCreate(c.registry, session, c.listKey(), func() *ListView[T] {
		mounted = true
		return NewListView(c.schema, c.res, intl.UseTranslator(ctx), c.viewOptions(ctx))
	})
	if mounted {
		c.run(ctx, v.Mount)
	}
	return v
}

func (c *Controller[T, C, U, D]) run(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		c.logger(ctx).WithError(err).Debug("view action skipped")
	}
}

// List mounts a fresh list view; navigating to the page always reloads.
func (c *Controller[T, C, U, D]) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := UseSession(ctx)
	v := NewListView(c.schema, c.res, intl.UseTranslator(ctx), c.viewOptions(ctx))
	c.registry.Put(session, c.listKey(), v)
	c.run(ctx, v.Mount)
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) Refresh(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	c.run(r.Context(), v.Refresh)
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) ToggleRow(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	v := c.listView(r)
	v.Toggle(id)
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) SelectAll(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	v.SelectAll()
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) ClearSelection(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	v.ClearSelection()
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) RequestDelete(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	v.RequestDelete()
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	c.run(r.Context(), v.ConfirmDelete)
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) CancelDelete(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	v.CancelDelete()
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) DismissAlert(w http.ResponseWriter, r *http.Request) {
	v := c.listView(r)
	v.DismissAlert()
	c.renderList(w, r, v)
}

func (c *Controller[T, C, U, D]) GetNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, _ := UseSession(ctx)
	f := NewCreateForm(c.schema, c.res, intl.UseTranslator(ctx), c.viewOptions(ctx))
	c.registry.Put(session, c.formKey(0), f)
	c.run(ctx, f.Mount)
	c.renderForm(w, r, f)
}

func (c *Controller[T, C, U, D]) GetEdit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	session, _ := UseSession(ctx)
	f := NewEditForm(c.schema, c.res, intl.UseTranslator(ctx), id, c.viewOptions(ctx))
	c.registry.Put(session, c.formKey(id), f)
	c.run(ctx, f.Mount)
	c.renderForm(w, r, f)
}

// formView returns the session's form view for id (zero for create), mounting one if needed.
func (c *Controller[T, C, U, D]) formView(r *http.Request, id int64) *FormView[T, C, U, D] {
	ctx := r.Context()
	session, _ := UseSession(ctx)
	mounted := false
	f := GetOrCreate(c.registry, session, c.formKey(id), func() *FormView[T, C, U, D] {
		mounted = true
		tr := intl.UseTranslator(ctx)
		if id == 0 {
			return NewCreateForm(c.schema, c.res, tr, c.viewOptions(ctx))
		}
		return NewEditForm(c.schema, c.res, tr, id, c.viewOptions(ctx))
	})
	if mounted {
		c.run(ctx, f.Mount)
	}
	return f
}

func (c *Controller[T, C, U, D]) Create(w http.ResponseWriter, r *http.Request) {
	c.submit(w, r, 0)
}

func (c *Controller[T, C, U, D]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.submit(w, r, id)
}

func (c *Controller[T, C, U, D]) submit(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	draft, err := DecodeDraft[D](r.PostForm)
	if err != nil {
		c.logger(r.Context()).WithError(err).Warn("malformed form post")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := c.formView(r, id)
	if err := f.Apply(draft); err != nil {
		c.renderForm(w, r, f)
		return
	}
	if _, err := f.Submit(r.Context()); err != nil {
		c.logger(r.Context()).WithError(err).Debug("submit skipped")
	}
	c.renderForm(w, r, f)
}

func (c *Controller[T, C, U, D]) RequestRecordDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := c.formView(r, id)
	f.RequestDelete()
	c.renderForm(w, r, f)
}

func (c *Controller[T, C, U, D]) ConfirmRecordDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := c.formView(r, id)
	if _, err := f.ConfirmDelete(r.Context()); err != nil {
		c.logger(r.Context()).WithError(err).Debug("delete skipped")
	}
	c.renderForm(w, r, f)
}

func (c *Controller[T, C, U, D]) CancelRecordDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := c.formView(r, id)
	f.CancelDelete()
	c.renderForm(w, r, f)
}

func (c *Controller[T, C, U, D]) renderList(w http.ResponseWriter, r *http.Request, v *ListView[T]) {
	ctx := r.Context()
	tr := intl.UseTranslator(ctx)
	snap := v.Snapshot()
	msgs := c.schema.Messages()

	columns := c.schema.Columns()
	props := views.ListPageProps{
		Tr:            tr,
		Title:         tr.T(msgs.ListTitle),
		BasePath:      c.schema.BasePath(),
		Columns:       make([]string, len(columns)),
		Loading:       snap.State == ListLoading || snap.State == ListIdle,
		LoadError:     snap.Error,
		AllSelected:   snap.AllSelected,
		SelectedCount: snap.SelectedCount(),
		Confirm:       snap.Confirm,
		Deleting:      snap.DeleteState == DeleteDeleting,
		Alert:         c.alertProps(snap.Alert, c.schema.BasePath()+"/alert/dismiss"),
	}
	if msgs.AddButton != "" {
		props.AddLabel = tr.T(msgs.AddButton)
	}
	for i, col := range columns {
		props.Columns[i] = tr.T(col.Label)
	}
	for _, item := range snap.Items {
		id := c.schema.ID(item)
		props.Rows = append(props.Rows, views.Row{
			ID:       id,
			Link:     v.RowLink(id),
			Cells:    c.schema.Row(item, tr),
			Selected: snap.Selected[id],
		})
	}
	c.render(w, r, props.Title, views.ListPage(props), nil)
}

func (c *Controller[T, C, U, D]) renderForm(w http.ResponseWriter, r *http.Request, f *FormView[T, C, U, D]) {
	ctx := r.Context()
	tr := intl.UseTranslator(ctx)
	snap := f.Snapshot()
	msgs := c.schema.Messages()

	props := views.FormPageProps{
		Tr:       tr,
		BasePath: c.schema.BasePath(),
		Edit:     snap.Mode == ModeEdit,
		Errors:   snap.Errors,
		Confirm:  snap.Confirm,
		Busy:     snap.Busy,
		Alert:    c.alertProps(snap.Alert, ""),
	}
	if props.Edit {
		props.Title = tr.T(msgs.EditTitle, map[string]interface{}{"Name": snap.Label})
		props.Action = c.schema.BasePath() + "/edit/" + strconv.FormatInt(snap.ID, 10)
		props.RetryURL = props.Action
	} else {
		props.Title = tr.T(msgs.AddTitle)
		props.Action = c.schema.BasePath() + "/add"
	}
	if snap.State == FormLoadError {
		props.LoadError = snap.Error
	} else if snap.State != FormLoading {
		props.Fields = c.fieldProps(tr, snap)
	}
	if store, ok := composables.UseFavorites(ctx); ok && props.Edit && snap.Label != "" {
		props.FavoriteURL = composables.ToggleRecordFavoriteURL(props.Action, snap.Label)
		props.Favorite = store.IsFavorite(props.Action)
	}

	var redirect *views.Redirect
	if snap.Redirect != nil {
		redirect = &views.Redirect{URL: snap.Redirect.Path, AfterMs: snap.Redirect.After.Milliseconds()}
	}
	c.render(w, r, props.Title, views.FormPage(props), redirect)
}

func (c *Controller[T, C, U, D]) fieldProps(tr Translator, snap FormSnapshot[D]) []views.FieldProps {
	var out []views.FieldProps
	for _, field := range c.schema.Fields() {
		if field.EditOnly && snap.Mode != ModeEdit {
			continue
		}
		value := snap.Values.Get(field.Name)
		fp := views.FieldProps{
			Name:     field.Name,
			Label:    tr.T(field.Label),
			Kind:     string(field.Kind),
			Required: field.Required,
			Value:    value,
			Checked:  value == "true",
		}
		if field.Placeholder != "" {
			fp.Placeholder = tr.T(field.Placeholder)
		}
		for _, opt := range snap.Options[field.Options] {
			fp.Options = append(fp.Options, views.Option{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: opt.Value == value,
			})
		}
		out = append(out, fp)
	}
	return out
}

func (c *Controller[T, C, U, D]) alertProps(a *Alert, dismissURL string) *views.Alert {
	if a == nil {
		return nil
	}
	return &views.Alert{
		Severity:       string(a.Severity),
		Message:        a.Message,
		DismissAfterMs: a.DismissAfter.Milliseconds(),
		DismissURL:     dismissURL,
	}
}

func (c *Controller[T, C, U, D]) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component, redirect *views.Redirect) {
	RenderPage(w, r, title, body, redirect)
}

// RenderPage writes body inside the console layout. htmx requests get the
// bare body, with a pending redirect passed on as an Hx-Trigger event.
func RenderPage(w http.ResponseWriter, r *http.Request, title string, body templ.Component, redirect *views.Redirect) {
	renderPage(w, r, http.StatusOK, title, body, redirect)
}

// RenderStatus is RenderPage with a non-200 status.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	renderPage(w, r, status, title, body, nil)
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component, redirect *views.Redirect) {
	var component templ.Component
	if r.Header.Get("Hx-Request") == "true" {
		if redirect != nil {
			trigger, err := json.Marshal(map[string]any{
				"redirect": map[string]any{"url": redirect.URL, "after": redirect.AfterMs},
			})
			if err == nil {
				w.Header().Set("Hx-Trigger-After-Settle", string(trigger))
			}
		}
		component = body
	} else {
		props := composables.UseLayoutProps(r.Context(), title)
		props.Redirect = redirect
		component = views.Layout(props, body)
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
