// Package views renders the console pages. Every page is a templ.Component
// backed by an embedded html/template so handlers compose them like any other
// component.
package views

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Translator resolves message ids inside templates: {{.Tr.T "Common.Save"}}.
type Translator interface {
	T(msgID string, data ...map[string]interface{}) string
}

var templates = template.Must(
	template.New("views").
		Funcs(template.FuncMap{
			"dict": func(kv ...interface{}) map[string]interface{} {
				m := make(map[string]interface{}, len(kv)/2)
				for i := 0; i+1 < len(kv); i += 2 {
					if k, ok := kv[i].(string); ok {
						m[k] = kv[i+1]
					}
				}
				return m
			},
			"severityClass": func(s string) string {
				return "alert alert-" + s
			},
		}).
		ParseFS(templatesFS, "templates/*.html"),
)

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.ExecuteTemplate(w, name, data)
	})
}

// RenderString renders c into a string, for embedding into a parent template.
func RenderString(ctx context.Context, c templ.Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec
}

type Alert struct {
	Severity       string
	Message        string
	DismissAfterMs int64
	DismissURL     string
}

type Redirect struct {
	URL     string
	AfterMs int64
}

// RefreshSeconds rounds the delay up for the no-script fallback.
func (r Redirect) RefreshSeconds() int64 {
	return (r.AfterMs + 999) / 1000
}

type NavLink struct {
	Name      string
	Href      string
	Icon      string
	Active    bool
	Favorite  bool
	ToggleURL string
}

type LayoutProps struct {
	Tr        Translator
	Title     string
	Lang      string
	Dir       string
	CSS       string
	Nav       []NavLink
	Favorites []NavLink
	Query     string
	Redirect  *Redirect
}

type layoutData struct {
	LayoutProps
	Body template.HTML
}

func Layout(props LayoutProps, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := RenderString(ctx, body)
		if err != nil {
			return err
		}
		return templates.ExecuteTemplate(w, "layout", layoutData{LayoutProps: props, Body: html})
	})
}

type Row struct {
	ID       int64
	Link     string
	Cells    []string
	Selected bool
}

type ListPageProps struct {
	Tr            Translator
	Title         string
	AddLabel      string
	BasePath      string
	Columns       []string
	Rows          []Row
	Loading       bool
	LoadError     string
	AllSelected   bool
	SelectedCount int
	Confirm       string
	Deleting      bool
	Alert         *Alert
}

func ListPage(props ListPageProps) templ.Component {
	return render("list", props)
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

type FieldProps struct {
	Name        string
	Label       string
	Placeholder string
	Kind        string
	Required    bool
	Value       string
	Checked     bool
	Options     []Option
}

type FormPageProps struct {
	Tr        Translator
	Title     string
	BasePath  string
	Action    string
	Edit      bool
	LoadError string
	RetryURL  string
	Fields    []FieldProps
	Errors    []string
	Confirm   string
	Busy      bool
	Alert     *Alert
	// FavoriteURL toggles the record shortcut; empty hides the star.
	FavoriteURL string
	Favorite    bool
}

func FormPage(props FormPageProps) templ.Component {
	return render("form", props)
}

type ModuleCard struct {
	Name string
	Href string
	Icon string
}

type HomePageProps struct {
	Tr        Translator
	Modules   []ModuleCard
	Healthy   bool
	HealthErr string
	Favorites []NavLink
}

func HomePage(props HomePageProps) templ.Component {
	return render("home", props)
}

type FavoriteGroup struct {
	Type    string
	Entries []FavoriteRow
}

type FavoriteRow struct {
	Key       string
	Name      string
	Path      string
	Icon      string
	DateAdded string
}

type FavoritesPageProps struct {
	Tr     Translator
	Groups []FavoriteGroup
	Alert  *Alert
}

func FavoritesPage(props FavoritesPageProps) templ.Component {
	return render("favorites", props)
}

type SearchResult struct {
	Label string
	Link  string
	Icon  string
}

type SpotlightProps struct {
	Tr      Translator
	Query   string
	Results []SearchResult
}

func SpotlightResults(props SpotlightProps) templ.Component {
	return render("spotlight", props)
}

type ErrorPageProps struct {
	Tr      Translator
	Status  int
	Message string
}

func ErrorPage(props ErrorPageProps) templ.Component {
	return render("error", props)
}
