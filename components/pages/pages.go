// components/pages/pages.go
//
// Launchpad pages component – the static marketing pages.
//
//   GET /         → index
//   GET /new      → what's new
//   GET /pricing  → pricing
//
// Every page pops pending flashes (for example the newsletter
// acknowledgement after POST /newsletter redirects here) and carries the
// newsletter signup form in its footer.
//
//------------------------------------------------------------------------------

package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/launchpad/internal/component"
	"github.com/yanizio/launchpad/internal/head"
	"github.com/yanizio/launchpad/internal/logger"
	"github.com/yanizio/launchpad/internal/view"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves the static pages.
type Component struct {
	deps component.Deps
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "pages" }

// Migrations returns nil; pages have no schema.
func (c *Component) Migrations() []string { return nil }

// Init keeps the shared services.
func (c *Component) Init(d component.Deps) error {
	c.deps = d
	return nil
}

// Routes registers the page endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/", c.page(view.PageHome, "",
		"Ship a product page, collect leads, and keep customers in the loop."))
	r.Get("/new", c.page(view.PageNew, "What's New",
		"Recent additions and improvements."))
	r.Get("/pricing", c.page(view.PagePricing, "Pricing",
		"Plans for single sites, teams, and businesses."))
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) page(name, title, description string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := &view.PageData{
			Title:      title,
			Path:       r.URL.Path,
			Head:       head.New().Describe(description).Link("canonical", r.URL.Path),
			Flashes:    c.deps.Flashes.Pop(w, r),
			Newsletter: c.deps.Submit.NewsletterSchema(),
		}
		if err := c.deps.Views.Render(w, http.StatusOK, name, data); err != nil {
			logger.FromContext(r.Context()).Errorw("render failed", "page", name, "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
