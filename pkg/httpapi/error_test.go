package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shortcut struct {
	Name string `validate:"required"`
	Path string `validate:"required"`
}

func TestValidate_ReportsEveryField(t *testing.T) {
	env := Validate(shortcut{})
	require.NotNil(t, env)
	assert.Equal(t, CodeValidation, env.Code)
	assert.Equal(t, "Name is a required field", env.Meta["name"])
	assert.Contains(t, env.Meta, "path")

	assert.Nil(t, Validate(shortcut{Name: "Departments", Path: "/modules/departments"}))
}

func TestWriteError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusNotFound, CodeNotFound, "favorite not found", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, ErrorEnvelope{Code: CodeNotFound, Message: "favorite not found"}, env)
}
