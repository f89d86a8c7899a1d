package crud

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/org-console/pkg/constants"
)

// Validation is the result of checking a draft. Errors are display strings.
type Validation struct {
	Valid  bool
	Errors []string
}

func (v Validation) Message() string {
	return strings.Join(v.Errors, ErrorSeparator)
}

// CheckStruct validates draft with the shared validator and returns one
// message id per failing field, "<prefix>.Validation.<Field>.<tag>", in
// struct field order. Fields named in except are skipped.
func CheckStruct(prefix string, draft any, except ...string) []string {
	var err error
	if len(except) > 0 {
		err = constants.Validate.StructExcept(draft, except...)
	} else {
		err = constants.Validate.Struct(draft)
	}
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(err)
	}
	ids := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ids = append(ids, fmt.Sprintf("%s.Validation.%s.%s", prefix, fe.Field(), fe.Tag()))
	}
	return ids
}

func translateAll(tr Translator, ids []string) Validation {
	if len(ids) == 0 {
		return Validation{Valid: true}
	}
	out := Validation{Errors: make([]string, len(ids))}
	for i, id := range ids {
		out.Errors[i] = tr.T(id)
	}
	return out
}
