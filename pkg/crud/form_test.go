package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/org-console/pkg/resource"
)

type widgetForm = FormView[widget, widgetPayload, widgetPayload, widgetDraft]

func newCreateWidgetForm(t *testing.T, schema *widgetSchema, res *fakeWidgets) *widgetForm {
	t.Helper()
	f := NewCreateForm[widget, widgetPayload, widgetPayload, widgetDraft](schema, res, echoTranslator{}, testOptions(nil))
	require.NoError(t, f.Mount(context.Background()))
	return f
}

func newEditWidgetForm(t *testing.T, schema *widgetSchema, res *fakeWidgets, id int64) *widgetForm {
	t.Helper()
	f := NewEditForm[widget, widgetPayload, widgetPayload, widgetDraft](schema, res, echoTranslator{}, id, testOptions(nil))
	require.NoError(t, f.Mount(context.Background()))
	return f
}

func TestFormView_CreateStartsFromEmptyDraft(t *testing.T) {
	schema := &widgetSchema{}
	f := newCreateWidgetForm(t, schema, &fakeWidgets{})

	snap := f.Snapshot()
	assert.Equal(t, FormNew, snap.State)
	assert.Equal(t, widgetDraft{Active: true}, snap.Draft)
	assert.Len(t, snap.Options["parents"], 3)
	assert.Equal(t, 1, schema.optionCalls)
	assert.Zero(t, schema.lastSelf)
}

func TestFormView_ValidationCollectsEveryViolation(t *testing.T) {
	res := &fakeWidgets{}
	f := newCreateWidgetForm(t, &widgetSchema{}, res)
	require.NoError(t, f.Apply(widgetDraft{Name: "  ", Budget: "abc"}))

	v := f.Validate()
	assert.False(t, v.Valid)
	assert.Equal(t, []string{
		"Widgets.Validation.Name.notblank",
		"Widgets.Validation.Budget.budget",
	}, v.Errors)

	out, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, SeverityError, out.Alert.Severity)
	assert.Equal(t, "Widgets.Validation.Name.notblank، Widgets.Validation.Budget.budget", out.Alert.Message)
	assert.Nil(t, out.Redirect)
	assert.Empty(t, res.created, "invalid drafts never reach the backend")
	assert.Equal(t, FormNew, f.Snapshot().State)
}

func TestFormView_BudgetMustBePositive(t *testing.T) {
	f := newCreateWidgetForm(t, &widgetSchema{}, &fakeWidgets{})
	for _, budget := range []string{"0", "-5"} {
		require.NoError(t, f.Apply(widgetDraft{Name: "x", Budget: budget}))
		assert.Equal(t, []string{"Widgets.Validation.Budget.positive"}, f.Validate().Errors, budget)
	}
	require.NoError(t, f.Apply(widgetDraft{Name: "x", Budget: "100"}))
	assert.True(t, f.Validate().Valid)
}

func TestFormView_CreateFailureKeepsDraft(t *testing.T) {
	res := &fakeWidgets{createRes: resource.MutationResult[widget]{Error: "Duplicate code"}}
	f := newCreateWidgetForm(t, &widgetSchema{}, res)
	draft := widgetDraft{Name: "alpha", Budget: "10"}
	require.NoError(t, f.Apply(draft))

	out, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out.Alert)
	assert.Equal(t, "Duplicate code", out.Alert.Message)
	assert.Nil(t, out.Redirect)

	snap := f.Snapshot()
	assert.Equal(t, FormSubmitError, snap.State)
	assert.Equal(t, draft, snap.Draft)
	assert.Len(t, res.created, 1)
}

func TestFormView_CreateSuccessRedirectsAfterDelay(t *testing.T) {
	res := &fakeWidgets{createRes: resource.MutationResult[widget]{Success: true}}
	f := newCreateWidgetForm(t, &widgetSchema{}, res)
	require.NoError(t, f.SetField("name", "alpha"))
	require.NoError(t, f.SetField("budget", "250"))

	out, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out.Redirect)
	assert.Equal(t, "/modules/widgets", out.Redirect.Path)
	assert.Equal(t, SaveRedirectDelay, out.Redirect.After)
	assert.Equal(t, "Widgets.Form.Created", out.Alert.Message)
	assert.Equal(t, []widgetPayload{{Name: "alpha", Budget: "250", Active: true}}, res.created)

	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady, "no second save while navigating away")
}

func TestFormView_EditLoadsRecordAndExcludesSelf(t *testing.T) {
	schema := &widgetSchema{}
	res := &fakeWidgets{record: &widget{ID: 2, Name: "beta", Budget: "200"}}
	f := newEditWidgetForm(t, schema, res, 2)

	snap := f.Snapshot()
	assert.Equal(t, FormReady, snap.State)
	assert.Equal(t, widgetDraft{Name: "beta", Budget: "200", Active: true}, snap.Draft)
	assert.Equal(t, int64(2), schema.lastSelf)
	for _, opt := range snap.Options["parents"] {
		assert.NotEqual(t, "2", opt.Value)
	}
	assert.Equal(t, "beta", snap.Values.Get("name"))
}

func TestFormView_EditMissingRecordShowsErrorPanel(t *testing.T) {
	res := &fakeWidgets{}
	f := newEditWidgetForm(t, &widgetSchema{}, res, 404)

	snap := f.Snapshot()
	assert.Equal(t, FormLoadError, snap.State)
	assert.Equal(t, "Widgets.Form.NotFound", snap.Error)
	assert.ErrorIs(t, f.Apply(widgetDraft{Name: "x"}), ErrNotReady)
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	res.record = &widget{ID: 404, Name: "found later"}
	require.NoError(t, f.Retry(context.Background()))
	assert.Equal(t, FormReady, f.Snapshot().State)
	assert.Equal(t, 2, res.getCalls)
}

func TestFormView_EditFetchFailureUsesBackendMessage(t *testing.T) {
	res := &fakeWidgets{getErr: &resource.FetchError{Op: "get", Message: "timeout of 10000ms exceeded"}}
	f := newEditWidgetForm(t, &widgetSchema{}, res, 1)
	assert.Equal(t, "timeout of 10000ms exceeded", f.Snapshot().Error)
}

func TestFormView_UpdateSendsPayload(t *testing.T) {
	res := &fakeWidgets{
		record:    &widget{ID: 7, Name: "old", Budget: "5"},
		updateRes: resource.MutationResult[widget]{Success: true},
	}
	f := newEditWidgetForm(t, &widgetSchema{}, res, 7)
	require.NoError(t, f.SetField("name", "new"))
	require.NoError(t, f.SetField("active", "false"))

	out, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Widgets.Form.Updated", out.Alert.Message)
	assert.Equal(t, []widgetPayload{{ID: 7, Name: "new", Budget: "5", Active: false}}, res.updated)
}

func TestFormView_DeleteUsesConfirmation(t *testing.T) {
	res := &fakeWidgets{
		record:    &widget{ID: 7, Name: "old", Budget: "5"},
		deleteRes: resource.MutationResult[struct{}]{Success: true},
	}
	f := newEditWidgetForm(t, &widgetSchema{}, res, 7)

	_, err := f.ConfirmDelete(context.Background())
	assert.ErrorIs(t, err, ErrNothingPending)

	require.True(t, f.RequestDelete())
	assert.Equal(t, msgConfirmRecordDelete, f.Snapshot().Confirm)
	f.CancelDelete()
	assert.Empty(t, f.Snapshot().Confirm)
	assert.Empty(t, res.deleted)

	require.True(t, f.RequestDelete())
	out, err := f.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, res.deleted)
	require.NotNil(t, out.Redirect)
	assert.Equal(t, DeleteRedirectDelay, out.Redirect.After)
	assert.Equal(t, "Widgets.Form.Deleted", out.Alert.Message)
}

func TestFormView_DeleteFailureStaysOnForm(t *testing.T) {
	res := &fakeWidgets{
		record:    &widget{ID: 7},
		deleteRes: resource.MutationResult[struct{}]{Error: "in use"},
	}
	f := newEditWidgetForm(t, &widgetSchema{}, res, 7)
	require.True(t, f.RequestDelete())
	out, err := f.ConfirmDelete(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out.Redirect)
	assert.Equal(t, "in use", out.Alert.Message)
	assert.Equal(t, FormReady, f.Snapshot().State)
}

func TestFormView_CreateModeCannotDelete(t *testing.T) {
	f := newCreateWidgetForm(t, &widgetSchema{}, &fakeWidgets{})
	assert.False(t, f.RequestDelete())
}
