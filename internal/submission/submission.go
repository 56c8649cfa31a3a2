// internal/submission/submission.go
//
// Launchpad – Submission handling for the contact and newsletter forms.
//
// Context
//   A Handler takes a decoded POST payload, evaluates it against the form's
//   Schema, and returns either the accepted submission or a
//   *form.ValidationError.  Validation failure is never fatal and there is no
//   partial acceptance: a form is accepted whole or rejected with one message
//   per invalid field.
//
//   Accepted submissions produce exactly one Sink record and then run the
//   post-submit actions (store, notify) in actions.go.  Action failures are
//   logged and counted but never change the outcome the visitor sees.
//
//   The Sink is an explicit collaborator so nothing here touches process-wide
//   logging state.  *zap.SugaredLogger satisfies it and is safe for
//   concurrent writes.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yanizio/launchpad/internal/database"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/message"
	"github.com/yanizio/launchpad/internal/metrics"
)

// NewsletterError is the single message shown for any rejected signup.
const NewsletterError = "Please enter a valid email address."

// Sink receives submission records.
type Sink interface {
	Infow(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

// Store persists accepted submissions.  *database.SubmissionStore satisfies
// it.
type Store interface {
	SaveContact(ctx context.Context, rec database.ContactRecord) error
	SaveSubscriber(ctx context.Context, rec database.SubscriberRecord) error
}

// ContactMessage is an accepted contact form submission.
type ContactMessage struct {
	ID      string
	Name    string
	Email   string
	Subject string
	Message string
}

// Acknowledgement is the success text relayed to the visitor.
func (m *ContactMessage) Acknowledgement() string {
	return fmt.Sprintf("Thank you %s! Your message has been sent.", m.Name)
}

// Subscription is an accepted newsletter signup.
type Subscription struct {
	ID    string
	Email string
}

// Acknowledgement is the success text relayed to the visitor.
func (s *Subscription) Acknowledgement() string {
	return fmt.Sprintf("Thank you, %s! You have been subscribed to the newsletter.", s.Email)
}

// Handler evaluates and accepts submissions.  Safe for concurrent use once
// built.
type Handler struct {
	sink       Sink
	contact    *form.Schema
	newsletter *form.Schema

	store    Store
	mailer   message.Mailer
	notifyTo []string

	newID func() string
	now   func() time.Time
}

// Option customises a Handler.
type Option func(*Handler)

// WithStore enables the store action.
func WithStore(s Store) Option { return func(h *Handler) { h.store = s } }

// WithMailer enables contact notifications to the given recipients.
func WithMailer(m message.Mailer, to ...string) Option {
	return func(h *Handler) {
		h.mailer = m
		h.notifyTo = append([]string(nil), to...)
	}
}

// WithSchemas replaces the registered schemas.  Mostly for tests.
func WithSchemas(contact, newsletter *form.Schema) Option {
	return func(h *Handler) {
		h.contact, h.newsletter = contact, newsletter
	}
}

// New builds a Handler.  Schemas are resolved from the form registry once,
// so YAML overrides must be registered before New is called.
func New(sink Sink, opts ...Option) *Handler {
	h := &Handler{
		sink:  sink,
		newID: uuid.NewString,
		now:   time.Now,
	}
	if s, ok := form.Lookup(form.ContactID); ok {
		h.contact = s
	} else {
		h.contact = form.ContactSchema
	}
	if s, ok := form.Lookup(form.NewsletterID); ok {
		h.newsletter = s
	} else {
		h.newsletter = form.NewsletterSchema
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// ContactSchema returns the schema the handler validates contact posts with.
func (h *Handler) ContactSchema() *form.Schema { return h.contact }

// NewsletterSchema returns the schema used for signups.
func (h *Handler) NewsletterSchema() *form.Schema { return h.newsletter }

// SubmitContact evaluates payload against the contact schema.  The returned
// *form.Form is always non-nil so callers can re-render with prefill.
func (h *Handler) SubmitContact(ctx context.Context, payload map[string]string) (*ContactMessage, *form.Form, error) {
	f := form.Evaluate(h.contact, payload)
	if !f.IsValid() {
		metrics.FormSubmissions.WithLabelValues(h.contact.ID, metrics.OutcomeRejected).Inc()
		return nil, f, &form.ValidationError{Form: h.contact.ID, Fields: f.Errors()}
	}

	m := &ContactMessage{
		ID:      h.newID(),
		Name:    f.Value("name"),
		Email:   f.Value("email"),
		Subject: f.Value("subject"),
		Message: f.Value("message"),
	}

	h.sink.Infow(
		fmt.Sprintf("Contact form submitted by %s (%s): - %s", m.Name, m.Email, m.Subject),
		"form", h.contact.ID, "id", m.ID,
	)
	metrics.FormSubmissions.WithLabelValues(h.contact.ID, metrics.OutcomeAccepted).Inc()

	h.contactActions(ctx, m)
	return m, f, nil
}

// SubmitNewsletter evaluates payload against the newsletter schema.  Any
// failure collapses into one generic form-level message.
func (h *Handler) SubmitNewsletter(ctx context.Context, payload map[string]string) (*Subscription, error) {
	f := form.Evaluate(h.newsletter, payload)
	if !f.IsValid() {
		metrics.FormSubmissions.WithLabelValues(h.newsletter.ID, metrics.OutcomeRejected).Inc()
		return nil, &form.ValidationError{
			Form:   h.newsletter.ID,
			Fields: []form.ErrorField{{Message: NewsletterError}},
		}
	}

	s := &Subscription{ID: h.newID(), Email: f.Value("email")}

	h.sink.Infow(
		fmt.Sprintf("Newsletter subscription: %s", s.Email),
		"form", h.newsletter.ID, "id", s.ID,
	)
	metrics.FormSubmissions.WithLabelValues(h.newsletter.ID, metrics.OutcomeAccepted).Inc()

	h.subscriptionActions(ctx, s)
	return s, nil
}
