// components/contact/contact.go
//
// Launchpad contact component – the two visitor forms.
//
//   GET  /contact     → render the contact form
//   POST /contact     → submit; 303 back to /contact on success, or 422 with
//                       the form re-rendered, prefilled, and one error flash
//                       per invalid field
//   POST /newsletter  → subscribe; 303 to / with a success or error flash
//
// CSRF is verified by middleware before these handlers run.  The component
// also owns the submission tables, returned from Migrations().
//
//------------------------------------------------------------------------------

package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/launchpad/internal/component"
	"github.com/yanizio/launchpad/internal/database"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/head"
	"github.com/yanizio/launchpad/internal/logger"
	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/view"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

const (
	title       = "Contact Us"
	description = "Questions, support requests, or feedback: send us a message."
)

// Component handles the contact and newsletter forms.
type Component struct {
	deps component.Deps
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "contact" }

// Migrations creates the submission tables.
func (c *Component) Migrations() []string { return database.Schema }

// Init keeps the shared services.
func (c *Component) Init(d component.Deps) error {
	c.deps = d
	return nil
}

// Routes registers the form endpoints.
func (c *Component) Routes(r chi.Router) {
	r.Get("/contact", c.handleContactGET)
	r.Post("/contact", c.handleContactPOST)
	r.Post("/newsletter", c.handleNewsletterPOST)
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleContactGET(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, c.deps.Flashes.Pop(w, r), nil)
}

func (c *Component) handleContactPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	msg, f, err := c.deps.Submit.SubmitContact(r.Context(), form.Payload(r.PostForm))
	if err != nil {
		ve, ok := form.AsValidationError(err)
		if !ok {
			logger.FromContext(r.Context()).Errorw("contact submission failed", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		flashes := c.deps.Flashes.Pop(w, r)
		for _, m := range ve.Messages() {
			flashes = append(flashes, session.Error(m))
		}
		c.render(w, r, http.StatusUnprocessableEntity, flashes, f)
		return
	}

	c.deps.Flashes.Add(w, r, session.Success(msg.Acknowledgement()))
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

func (c *Component) handleNewsletterPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sub, err := c.deps.Submit.SubmitNewsletter(r.Context(), form.Payload(r.PostForm))
	switch ve, invalid := form.AsValidationError(err); {
	case err == nil:
		c.deps.Flashes.Add(w, r, session.Success(sub.Acknowledgement()))
	case invalid:
		items := make([]session.Flash, 0, len(ve.Fields))
		for _, m := range ve.Messages() {
			items = append(items, session.Error(m))
		}
		c.deps.Flashes.Add(w, r, items...)
	default:
		logger.FromContext(r.Context()).Errorw("newsletter submission failed", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, status int, flashes []session.Flash, f *form.Form) {
	data := &view.PageData{
		Title:      title,
		Path:       r.URL.Path,
		Head:       head.New().Describe(description).Link("canonical", "/contact"),
		Flashes:    flashes,
		Contact:    c.deps.Submit.ContactSchema(),
		Newsletter: c.deps.Submit.NewsletterSchema(),
		Form:       f,
	}
	if err := c.deps.Views.Render(w, status, view.PageContact, data); err != nil {
		logger.FromContext(r.Context()).Errorw("render failed", "page", view.PageContact, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
