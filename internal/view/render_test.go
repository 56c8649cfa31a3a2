package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/theme"
)

func newRenderer(t *testing.T, themeDir string) (*Renderer, *form.CSRF) {
	t.Helper()
	csrf, err := form.NewCSRF([]byte("view-test-key-0123456789abcdef"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	th, err := theme.Load(themeDir, Defaults())
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(th, csrf, "Acme")
	if err != nil {
		t.Fatal(err)
	}
	return r, csrf
}

func TestRenderContactPage(t *testing.T) {
	r, csrf := newRenderer(t, "")
	rr := httptest.NewRecorder()

	err := r.Render(rr, http.StatusUnprocessableEntity, PageContact, &PageData{
		Title:      "Contact Us",
		Path:       "/contact",
		Flashes:    []session.Flash{session.Error("Name error: Name is required")},
		Contact:    form.ContactSchema,
		Newsletter: form.NewsletterSchema,
		Form:       form.Evaluate(form.ContactSchema, map[string]string{"email": "jane@example.com"}),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<title>Contact Us · Acme</title>",
		`class="flash flash-error"`,
		"Name error: Name is required",
		`value="jane@example.com"`,
		`href="/assets/site.css"`,
		`aria-current="page">Contact`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	// Both the contact and newsletter forms carry a verifiable token.
	if n := strings.Count(body, `name="csrf_token"`); n != 2 {
		t.Fatalf("csrf inputs = %d, want 2", n)
	}
	i := strings.Index(body, `name="csrf_token" value="`) + len(`name="csrf_token" value="`)
	tok := body[i : i+strings.IndexByte(body[i:], '"')]
	if !csrf.Verify(tok) {
		t.Fatal("rendered token does not verify")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, _ := newRenderer(t, "")
	rr := httptest.NewRecorder()
	if err := r.Render(rr, http.StatusOK, "missing", &PageData{}); err == nil {
		t.Fatal("unknown page rendered")
	}
	if rr.Body.Len() != 0 {
		t.Fatal("partial output written on error")
	}
}

func TestThemeOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "templates"), 0o755); err != nil {
		t.Fatal(err)
	}
	page := `{{ define "content" }}<h1>Custom pricing for {{ .Site }}</h1>{{ end }}`
	if err := os.WriteFile(filepath.Join(dir, "templates", "pricing.html"), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}

	r, _ := newRenderer(t, dir)
	rr := httptest.NewRecorder()
	if err := r.Render(rr, http.StatusOK, PagePricing, &PageData{Newsletter: form.NewsletterSchema}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rr.Body.String(), "Custom pricing for Acme") {
		t.Fatal("theme override not used")
	}
}

func TestNewFailsOnBrokenTemplate(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "templates"), 0o755)
	os.WriteFile(filepath.Join(dir, "templates", "index.html"), []byte(`{{ define "content" }}{{ .Nope `), 0o644)

	csrf, _ := form.NewCSRF([]byte("k"), time.Hour)
	th, err := theme.Load(dir, Defaults())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(th, csrf, "Acme"); err == nil {
		t.Fatal("broken template accepted")
	}
}
