package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/iota-uz/org-console/pkg/constants"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// DecodeJSON reads a JSON body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// english is registered at package init, before any request validates.
var english = newEnglishTranslator()

func newEnglishTranslator() ut.Translator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(constants.Validate, trans); err != nil {
		panic(err)
	}
	return trans
}

// Validate checks v with the shared validator. Field failures are returned
// as an envelope keyed by JSON-ish lower case field names.
func Validate(v any) *ErrorEnvelope {
	err := constants.Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ErrorEnvelope{Code: CodeInvalidRequest, Message: err.Error()}
	}
	trans := english
	meta := make(map[string]string, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(trans)
		meta[strings.ToLower(fe.Field())] = msg
		msgs = append(msgs, msg)
	}
	return &ErrorEnvelope{Code: CodeValidation, Message: strings.Join(msgs, "; "), Meta: meta}
}
