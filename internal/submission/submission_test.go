package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/launchpad/internal/database"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/message"
)

type fakeStore struct {
	mu       sync.Mutex
	contacts []database.ContactRecord
	subs     []database.SubscriberRecord
	err      error
}

func (s *fakeStore) SaveContact(_ context.Context, rec database.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append(s.contacts, rec)
	return s.err
}

func (s *fakeStore) SaveSubscriber(_ context.Context, rec database.SubscriberRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, rec)
	return s.err
}

type fakeMailer struct {
	sent []message.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, e message.Email) error {
	m.sent = append(m.sent, e)
	return m.err
}

func newHandler(opts ...Option) (*Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	h := New(zap.New(core).Sugar(), opts...)
	h.newID = func() string { return "id-1" }
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return h, logs
}

func validPayload() map[string]string {
	return map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"subject": "support",
		"message": "Hello, I need help with my order.",
	}
}

func TestSubmitContactAccepted(t *testing.T) {
	h, logs := newHandler()

	m, f, err := h.SubmitContact(context.Background(), validPayload())
	if err != nil {
		t.Fatalf("SubmitContact: %v", err)
	}
	if !f.IsValid() {
		t.Fatal("returned form not valid")
	}

	want := &ContactMessage{
		ID: "id-1", Name: "Jane Doe", Email: "jane@example.com",
		Subject: "support", Message: "Hello, I need help with my order.",
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
	if ack := m.Acknowledgement(); ack != "Thank you Jane Doe! Your message has been sent." {
		t.Fatalf("Acknowledgement = %q", ack)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log records, want exactly 1", len(entries))
	}
	if got := entries[0].Message; got != "Contact form submitted by Jane Doe (jane@example.com): - support" {
		t.Fatalf("log message = %q", got)
	}
	if entries[0].ContextMap()["form"] != form.ContactID {
		t.Fatalf("log fields = %v", entries[0].ContextMap())
	}
}

func TestSubmitContactRejected(t *testing.T) {
	h, logs := newHandler()
	p := validPayload()
	p["name"] = ""
	p["message"] = strings.Repeat("x", 501)

	m, f, err := h.SubmitContact(context.Background(), p)
	if m != nil {
		t.Fatal("rejected submission returned a message")
	}
	if f == nil || f.Value("email") != "jane@example.com" {
		t.Fatal("form not returned for prefill")
	}

	ve, ok := form.AsValidationError(err)
	if !ok {
		t.Fatalf("err = %v, want *form.ValidationError", err)
	}
	want := []string{
		"Name error: Name is required",
		"Message error: Message must be between 10 and 500 characters",
	}
	if diff := cmp.Diff(want, ve.Messages()); diff != "" {
		t.Fatalf("Messages mismatch (-want +got):\n%s", diff)
	}
	if logs.Len() != 0 {
		t.Fatalf("rejected submission logged %d records", logs.Len())
	}
}

func TestSubmitContactRunsActions(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	h, _ := newHandler(WithStore(store), WithMailer(mailer, "owner@example.com"))

	if _, _, err := h.SubmitContact(context.Background(), validPayload()); err != nil {
		t.Fatal(err)
	}

	wantRec := []database.ContactRecord{{
		ID: "id-1", Name: "Jane Doe", Email: "jane@example.com", Subject: "support",
		Message: "Hello, I need help with my order.", SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}
	if diff := cmp.Diff(wantRec, store.contacts); diff != "" {
		t.Fatalf("stored record mismatch (-want +got):\n%s", diff)
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mailer.sent))
	}
	mail := mailer.sent[0]
	if diff := cmp.Diff([]string{"owner@example.com"}, mail.To); diff != "" {
		t.Fatalf("To mismatch:\n%s", diff)
	}
	if !strings.Contains(mail.Text, "Hello, I need help with my order.") || !strings.Contains(mail.Subject, "Jane Doe") {
		t.Fatalf("mail = %+v", mail)
	}
}

func TestActionFailureDoesNotRejectSubmission(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	h, logs := newHandler(WithStore(store))

	m, _, err := h.SubmitContact(context.Background(), validPayload())
	if err != nil || m == nil {
		t.Fatalf("submission failed because an action failed: %v", err)
	}
	failed := logs.FilterMessage("form action failed").All()
	if len(failed) != 1 {
		t.Fatalf("got %d action failure logs, want 1", len(failed))
	}
	if failed[0].ContextMap()["action"] != "store" {
		t.Fatalf("fields = %v", failed[0].ContextMap())
	}
}

func TestSubmitNewsletter(t *testing.T) {
	store := &fakeStore{}
	h, logs := newHandler(WithStore(store))

	s, err := h.SubmitNewsletter(context.Background(), map[string]string{"email": "a@b.com"})
	if err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if s.Acknowledgement() != "Thank you, a@b.com! You have been subscribed to the newsletter." {
		t.Fatalf("Acknowledgement = %q", s.Acknowledgement())
	}
	if logs.FilterMessage("Newsletter subscription: a@b.com").Len() != 1 {
		t.Fatal("subscription not logged once")
	}
	if len(store.subs) != 1 || store.subs[0].Email != "a@b.com" {
		t.Fatalf("stored = %+v", store.subs)
	}

	for _, bad := range []string{"not-an-email", ""} {
		_, err := h.SubmitNewsletter(context.Background(), map[string]string{"email": bad})
		ve, ok := form.AsValidationError(err)
		if !ok {
			t.Fatalf("%q: err = %v", bad, err)
		}
		if diff := cmp.Diff([]string{NewsletterError}, ve.Messages()); diff != "" {
			t.Fatalf("%q: messages mismatch:\n%s", bad, diff)
		}
	}
	if len(store.subs) != 1 {
		t.Fatal("rejected signup was stored")
	}
}

func TestWithSchemas(t *testing.T) {
	custom := &form.Schema{ID: "newsletter", Fields: []form.FieldSpec{{
		Name: "email", Label: "Email", Type: "email",
		Rules: []form.Rule{form.Required(""), form.Email(""), form.MustRegexp(`.+@example\.com`, "")},
	}}}
	h, _ := newHandler(WithSchemas(form.ContactSchema, custom))

	if _, err := h.SubmitNewsletter(context.Background(), map[string]string{"email": "a@b.com"}); err == nil {
		t.Fatal("custom schema not applied")
	}
	if h.NewsletterSchema() != custom {
		t.Fatal("NewsletterSchema() did not return the override")
	}
}
