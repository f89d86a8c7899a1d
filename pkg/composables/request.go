package composables

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/shared"
	"github.com/iota-uz/org-console/pkg/types"
)

type Params struct {
	IP        string
	UserAgent string
}

// UseParams returns the request parameters from the context.
// If the parameters are not found, the second return value will be false.
func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok
}

// WithParams returns a new context with the request parameters.
func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

// UseLogger returns the request logger. Outside a request it falls back to
// the standard logger so background callers never panic.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// UseIP returns the IP address from the context.
// If the IP address is not found, the second return value will be false.
func UseIP(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.IP, true
}

// UseUserAgent returns the user agent from the context.
// If the user agent is not found, the second return value will be false.
func UseUserAgent(ctx context.Context) (string, bool) {
	params, ok := UseParams(ctx)
	if !ok {
		return "", false
	}
	return params.UserAgent, true
}

// UsePageCtx returns the page context from the context.
// If the page context is not found, function will panic.
func UsePageCtx(ctx context.Context) types.PageContextProvider {
	if pageCtx, ok := TryUsePageCtx(ctx); ok {
		return pageCtx
	}
	panic("page context not found")
}

// TryUsePageCtx attempts to fetch the page context without panicking.
func TryUsePageCtx(ctx context.Context) (types.PageContextProvider, bool) {
	v, ok := ctx.Value(constants.PageContext).(types.PageContextProvider)
	return v, ok
}

func WithPageCtx(ctx context.Context, pageCtx types.PageContextProvider) context.Context {
	return context.WithValue(ctx, constants.PageContext, pageCtx)
}

// UseQuery decodes the URL query into v, a pointer to a form-tagged struct.
func UseQuery[T comparable](v T, r *http.Request) (T, error) {
	return v, shared.Decoder.Decode(v, r.URL.Query())
}

// UseForm decodes the parsed request form into v.
func UseForm[T comparable](v T, r *http.Request) (T, error) {
	if err := r.ParseForm(); err != nil {
		return v, err
	}
	return v, shared.Decoder.Decode(v, r.Form)
}
