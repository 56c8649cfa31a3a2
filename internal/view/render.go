// internal/view/render.go
//
// Central view engine: page template sets, func-map injection, and
// buffered rendering.
//
// Public helpers
// --------------
//   - New       – parse every page once against the theme overlay.
//   - Render    – execute a page into a buffer, then write status + body.
//   - Defaults  – the embedded templates/ and assets/ tree.
//
// Lookup precedence (first hit wins):
//   1. <paths.theme_dir>/templates/<name>.html
//   2. embedded templates/<name>.html
//
// Each page is parsed into its own set together with the shared partials
// (layout, flashes, newsletter), because every page defines its own
// “content” block.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/head"
	"github.com/yanizio/launchpad/internal/metrics"
	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/theme"
)

//go:embed templates/*.html assets
var defaults embed.FS

// Defaults returns the embedded template and asset tree.
func Defaults() fs.FS { return defaults }

// Page names served by the site components.
const (
	PageHome    = "index"
	PageNew     = "new"
	PagePricing = "pricing"
	PageContact = "contact"
)

var (
	pageNames = []string{PageHome, PageNew, PagePricing, PageContact}
	partials  = []string{"layout", "flashes", "newsletter"}
)

// PageData is the root value every page template receives.
type PageData struct {
	Site       string
	Title      string
	Path       string
	Head       *head.Builder // description, canonical, Open Graph
	Flashes    []session.Flash
	CSRFToken  string
	Contact    *form.Schema
	Newsletter *form.Schema
	Form       *form.Form // evaluated contact form when re-rendering errors
}

// Renderer holds one parsed template set per page.  Safe for concurrent use.
type Renderer struct {
	site  string
	csrf  *form.CSRF
	pages map[string]*template.Template
}

// New parses every page through th.  A missing or malformed template fails
// startup.
func New(th *theme.Theme, csrf *form.CSRF, site string) (*Renderer, error) {
	r := &Renderer{
		site:  site,
		csrf:  csrf,
		pages: make(map[string]*template.Template, len(pageNames)),
	}

	for _, page := range pageNames {
		t := template.New(page).Funcs(funcMap(th))
		for _, name := range append(partials, page) {
			src, err := th.ReadFile("templates/" + name + ".html")
			if err != nil {
				return nil, fmt.Errorf("read template %s: %w", name, err)
			}
			if _, err := t.New(name).Parse(string(src)); err != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, err)
			}
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render executes page with data and writes it with status.  Nothing is
// written when execution fails, so callers can still send a 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}

	tok, err := r.csrf.Generate()
	if err != nil {
		return fmt.Errorf("csrf token: %w", err)
	}
	data.CSRFToken = tok
	data.Site = r.site
	if data.Head == nil {
		data.Head = head.New()
	}
	if !data.Head.Has("og:title") {
		title := r.site
		if data.Title != "" {
			title = data.Title
		}
		data.Head.Property("og:title", title)
	}
	data.Head.Property("og:site_name", r.site)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store") // pages embed a fresh CSRF token
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)

	metrics.PageViews.WithLabelValues(page).Inc()
	return err
}

//
// func-map
//

func funcMap(th *theme.Theme) template.FuncMap {
	return template.FuncMap{
		"asset":      th.Asset,
		"csrfField":  form.HiddenCSRF,
		"formField":  form.RenderField,
		"formFields": form.RenderFields,
		"flashClass": flashClass,
	}
}

// flashClass maps a flash category to its CSS classes.
func flashClass(category string) string {
	switch category {
	case session.CategorySuccess:
		return "flash flash-success"
	case session.CategoryError:
		return "flash flash-error"
	default:
		return "flash"
	}
}
