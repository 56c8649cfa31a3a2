package contact

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/launchpad/internal/component"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/middleware"
	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/submission"
	"github.com/yanizio/launchpad/internal/theme"
	"github.com/yanizio/launchpad/internal/view"
)

type harness struct {
	router http.Handler
	csrf   *form.CSRF
	logs   *observer.ObservedLogs
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	csrf, err := form.NewCSRF([]byte("csrf-key-csrf-key-csrf-key-0123"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	th, err := theme.Load("", view.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	views, err := view.New(th, csrf, "Launchpad")
	if err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	c := &Component{}
	if err := c.Init(component.Deps{
		Log:     log,
		Views:   views,
		Flashes: session.NewFlashes([]byte("flash-key-flash-key-flash-key-0"), false),
		Submit:  submission.New(log),
	}); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Use(middleware.CSRF(csrf))
	r.Group(c.Routes)
	return &harness{router: r, csrf: csrf, logs: logs}
}

func (h *harness) post(t *testing.T, path string, vals url.Values, withToken bool) *httptest.ResponseRecorder {
	t.Helper()
	if withToken {
		tok, err := h.csrf.Generate()
		if err != nil {
			t.Fatal(err)
		}
		vals.Set(form.CSRFField, tok)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

// follow issues a GET carrying the cookies set by prev.
func (h *harness) follow(t *testing.T, path string, prev *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range prev.Result().Cookies() {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func validContact() url.Values {
	return url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"subject": {"support"},
		"message": {"Hello, I need help with my order."},
	}
}

func TestContactGETRendersForm(t *testing.T) {
	h := newHarness(t)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contact", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{`name="csrf_token"`, `name="name"`, `name="subject"`, "General Inquiry", `action="/newsletter"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestContactPOSTWithoutTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	rr := h.post(t, "/contact", validContact(), false)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if n := h.logs.FilterMessageSnippet("Contact form submitted").Len(); n != 0 {
		t.Fatalf("submission logged %d times without CSRF", n)
	}
}

func TestContactPOSTAccepted(t *testing.T) {
	h := newHarness(t)
	rr := h.post(t, "/contact", validContact(), true)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/contact" {
		t.Fatalf("Location = %q", loc)
	}

	entries := h.logs.FilterMessage("Contact form submitted by Jane Doe (jane@example.com): - support").All()
	if len(entries) != 1 {
		t.Fatalf("got %d submission logs, want 1", len(entries))
	}

	page := h.follow(t, "/contact", rr)
	if !strings.Contains(page.Body.String(), "Thank you Jane Doe! Your message has been sent.") {
		t.Fatal("success flash not shown after redirect")
	}
}

func TestContactPOSTInvalidRerenders(t *testing.T) {
	h := newHarness(t)
	vals := validContact()
	vals.Set("name", "Jane123")
	vals.Set("subject", "billing")

	rr := h.post(t, "/contact", vals, true)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Name error: Name must contain only letters and spaces",
		"Subject error: Not a valid choice.",
		`value="jane@example.com"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if h.logs.FilterMessageSnippet("Contact form submitted").Len() != 0 {
		t.Fatal("rejected submission was logged as accepted")
	}
}

func TestNewsletterPOST(t *testing.T) {
	h := newHarness(t)

	rr := h.post(t, "/newsletter", url.Values{"email": {"reader@example.com"}}, true)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("accepted: status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
	if h.logs.FilterMessage("Newsletter subscription: reader@example.com").Len() != 1 {
		t.Fatal("subscription not logged")
	}

	rr = h.post(t, "/newsletter", url.Values{"email": {"not-an-email"}}, true)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("rejected: status = %d", rr.Code)
	}
	page := h.follow(t, "/contact", rr)
	if !strings.Contains(page.Body.String(), submission.NewsletterError) {
		t.Fatal("newsletter error flash not shown")
	}
}
