package constants

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	PhoneRegexp = regexp.MustCompile(`^[0-9+\-\s()]{10,15}$`)
	EmailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validate is shared by every form draft and API DTO.
var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must(v.RegisterValidation("notblank", validators.NotBlank))
	must(v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return PhoneRegexp.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("email_plain", func(fl validator.FieldLevel) bool {
		return EmailRegexp.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("budget", func(fl validator.FieldLevel) bool {
		_, err := ParseAmount(fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("positive", func(fl validator.FieldLevel) bool {
		d, err := ParseAmount(fl.Field().String())
		return err == nil && d.IsPositive()
	}))
	// selected accepts a positive integer id coming from a select input.
	must(v.RegisterValidation("selected", func(fl validator.FieldLevel) bool {
		id, err := strconv.ParseInt(strings.TrimSpace(fl.Field().String()), 10, 64)
		return err == nil && id > 0
	}))
	return v
}

// MaxAmount is the largest magnitude ParseAmount accepts.
var MaxAmount = decimal.New(1, 15)

var ErrAmountOutOfRange = errors.New("amount out of range")

// ParseAmount parses a user supplied decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	if f := d.InexactFloat64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Decimal{}, ErrAmountOutOfRange
	}
	return d, nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
