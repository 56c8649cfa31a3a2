// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web blank-imports the
// components it wants, calls Init(deps) on each, runs their migrations when
// a database is configured, and then lets each one add routes to the shared
// router inside its own chi Group.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/launchpad/internal/session"
	"github.com/yanizio/launchpad/internal/submission"
	"github.com/yanizio/launchpad/internal/view"
)

// Deps are the shared services handed to every component at boot.
type Deps struct {
	Log     *zap.SugaredLogger
	Views   *view.Renderer
	Flashes *session.Flashes
	Submit  *submission.Handler
}

// Component contract.
//
// Migrations() may return nil if the component has no schema.  Routes()
// registers page and form endpoints directly on r, e.g.:
//
//	func (c *Comp) Routes(r chi.Router) {
//		r.Get("/contact", c.show)
//		r.Post("/contact", c.submit)
//	}
type Component interface {
	Name() string
	Init(Deps) error
	Routes(r chi.Router)
	Migrations() []string
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A second
// registration under the same name replaces the first.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name, so route and
// migration order is stable across runs.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component with deps and adds its
// routes to r.  It stops at the first Init error.
func Mount(r chi.Router, deps Deps) error {
	for _, c := range All() {
		if err := c.Init(deps); err != nil {
			return &InitError{Component: c.Name(), Err: err}
		}
		r.Group(c.Routes)
		if deps.Log != nil {
			deps.Log.Debugw("component mounted", "component", c.Name())
		}
	}
	return nil
}

// Migrations returns the concatenated schema statements of every
// registered component, in All() order.
func Migrations() []string {
	var stmts []string
	for _, c := range All() {
		stmts = append(stmts, c.Migrations()...)
	}
	return stmts
}

// InitError names the component whose Init failed.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string { return "component " + e.Component + ": " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }
