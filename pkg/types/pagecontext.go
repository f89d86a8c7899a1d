package types

import (
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// PageContextProvider carries the locale and URL of the page being rendered.
// Message lookups go through intl.UseTranslator.
type PageContextProvider interface {
	GetLocale() language.Tag
	GetURL() *url.URL

	// Dir is the text direction of the locale, "rtl" or "ltr".
	Dir() string
}

type PageContext struct {
	Locale language.Tag
	URL    *url.URL
}

var _ PageContextProvider = (*PageContext)(nil)

func (p *PageContext) GetLocale() language.Tag {
	return p.Locale
}

func (p *PageContext) GetURL() *url.URL {
	return p.URL
}

func (p *PageContext) Dir() string {
	base, _ := p.Locale.Base()
	switch strings.ToLower(base.String()) {
	case "ar", "fa", "he", "ur":
		return "rtl"
	}
	return "ltr"
}
