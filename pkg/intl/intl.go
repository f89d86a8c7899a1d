package intl

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var ErrNoLocalizer = errors.New("localizer not found in context")

type SupportedLanguage struct {
	Code        string
	VerboseName string
	Tag         language.Tag
}

var (
	// allSupportedLanguages is the master list of all languages the console supports
	allSupportedLanguages = []SupportedLanguage{
		{
			Code:        "ar",
			VerboseName: "العربية",
			Tag:         language.Arabic,
		},
		{
			Code:        "en",
			VerboseName: "English",
			Tag:         language.English,
		},
	}

	SupportedLanguages = allSupportedLanguages
)

// GetSupportedLanguages returns a filtered list of supported languages based on the whitelist.
// If whitelist is nil or empty, returns all supported languages.
func GetSupportedLanguages(whitelist []string) []SupportedLanguage {
	if len(whitelist) == 0 {
		return allSupportedLanguages
	}

	whitelistMap := make(map[string]bool)
	for _, code := range whitelist {
		whitelistMap[code] = true
	}

	filtered := make([]SupportedLanguage, 0, len(whitelist))
	for _, lang := range allSupportedLanguages {
		if whitelistMap[lang.Code] {
			filtered = append(filtered, lang)
		}
	}

	return filtered
}

// NewBundle creates a message bundle with TOML and JSON unmarshalers registered.
func NewBundle(defaultLang language.Tag) *i18n.Bundle {
	bundle := i18n.NewBundle(defaultLang)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return bundle
}

// LoadMessages parses every file of fsys into the bundle.
func LoadMessages(bundle *i18n.Bundle, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		_, err = bundle.ParseMessageFileBytes(data, filepath.Base(path))
		return err
	})
}

type localizerKey struct{}
type localeKey struct{}

func WithLocalizer(ctx context.Context, l *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, l)
}

func UseLocalizer(ctx context.Context) (*i18n.Localizer, bool) {
	l, ok := ctx.Value(localizerKey{}).(*i18n.Localizer)
	return l, ok && l != nil
}

func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, localeKey{}, tag)
}

func UseLocale(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(localeKey{}).(language.Tag)
	return tag, ok
}

// MustT translates msgID with the localizer stored in ctx.
func MustT(ctx context.Context, msgID string, data ...map[string]interface{}) string {
	l, ok := UseLocalizer(ctx)
	if !ok {
		panic(ErrNoLocalizer)
	}
	cfg := &i18n.LocalizeConfig{MessageID: msgID}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	return l.MustLocalize(cfg)
}

// Translator resolves message ids to display strings. View state machines only
// depend on this so they can be driven without a request context.
type Translator interface {
	T(msgID string, data ...map[string]interface{}) string
}

type localizerTranslator struct {
	l *i18n.Localizer
}

func NewTranslator(l *i18n.Localizer) Translator {
	return &localizerTranslator{l: l}
}

// T falls back to the message id when no translation exists.
func (t *localizerTranslator) T(msgID string, data ...map[string]interface{}) string {
	cfg := &i18n.LocalizeConfig{MessageID: msgID}
	if len(data) > 0 {
		cfg.TemplateData = data[0]
	}
	s, err := t.l.Localize(cfg)
	if err != nil {
		return msgID
	}
	return s
}

// UseTranslator wraps the localizer in ctx. It panics when the localizer middleware did not run.
func UseTranslator(ctx context.Context) Translator {
	l, ok := UseLocalizer(ctx)
	if !ok {
		panic(ErrNoLocalizer)
	}
	return NewTranslator(l)
}
