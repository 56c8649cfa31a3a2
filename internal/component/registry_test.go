package component

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
)

type fake struct {
	name    string
	path    string
	initErr error
	inited  bool
}

func (f *fake) Name() string         { return f.name }
func (f *fake) Migrations() []string { return []string{"CREATE TABLE " + f.name + " (id INT)"} }
func (f *fake) Init(Deps) error      { f.inited = true; return f.initErr }
func (f *fake) Routes(r chi.Router) {
	r.Get(f.path, func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte(f.name)) })
}

func reset(t *testing.T) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = map[string]Component{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestMountSharesRootRouter(t *testing.T) {
	reset(t)
	b := &fake{name: "b", path: "/b"}
	a := &fake{name: "a", path: "/a"}
	Register(b)
	Register(a)

	r := chi.NewRouter()
	if err := Mount(r, Deps{}); err != nil {
		t.Fatal(err)
	}
	if !a.inited || !b.inited {
		t.Fatal("Init not called on every component")
	}

	for _, p := range []string{"/a", "/b"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, nil))
		if rr.Code != http.StatusOK || rr.Body.String() != p[1:] {
			t.Errorf("%s: status %d body %q", p, rr.Code, rr.Body.String())
		}
	}

	want := []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}
	if diff := cmp.Diff(want, Migrations()); diff != "" {
		t.Errorf("Migrations() mismatch (-want +got):\n%s", diff)
	}
}

func TestMountInitError(t *testing.T) {
	reset(t)
	boom := errors.New("boom")
	Register(&fake{name: "bad", path: "/bad", initErr: boom})

	err := Mount(chi.NewRouter(), Deps{})
	var ie *InitError
	if !errors.As(err, &ie) || ie.Component != "bad" || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want InitError wrapping boom", err)
	}
}
