package theme

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func base() fstest.MapFS {
	return fstest.MapFS{
		"templates/index.html": {Data: []byte("embedded index")},
		"assets/site.css":      {Data: []byte("body{}")},
	}
}

func TestLoadDefault(t *testing.T) {
	th, err := Load("", base())
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "default" || th.Root != "" {
		t.Fatalf("theme = %+v", th)
	}
	b, err := th.ReadFile("templates/index.html")
	if err != nil || string(b) != "embedded index" {
		t.Fatalf("ReadFile = %q, %v", b, err)
	}
}

func TestOverlayPrefersThemeDir(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "templates"), 0o755)
	os.WriteFile(filepath.Join(dir, "templates", "index.html"), []byte("themed index"), 0o644)

	th, err := Load(dir, base())
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != filepath.Base(dir) {
		t.Fatalf("Name = %q", th.Name)
	}
	b, _ := th.ReadFile("templates/index.html")
	if string(b) != "themed index" {
		t.Fatalf("override ignored: %q", b)
	}
	b, _ = th.ReadFile("assets/site.css")
	if string(b) != "body{}" {
		t.Fatalf("fallback failed: %q", b)
	}
}

func TestLoadMissingDir(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), base()); err == nil {
		t.Fatal("missing theme dir accepted")
	}
}

func TestAssetHandler(t *testing.T) {
	th, _ := Load("", base())
	if th.Asset("/site.css") != "/assets/site.css" {
		t.Fatalf("Asset = %q", th.Asset("/site.css"))
	}

	h := http.StripPrefix("/assets/", th.AssetHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	body, _ := io.ReadAll(rr.Body)
	if rr.Code != http.StatusOK || string(body) != "body{}" {
		t.Fatalf("status %d body %q", rr.Code, body)
	}
}
