// internal/session/session.go
//
// Launchpad – flash messages.
//
// Context
//   A flash is a one-time notification shown on the next page the visitor
//   sees, typically after a POST → 303 redirect.  Pending flashes travel in a
//   cookie named “launchpad_flash”:
//
//      base64url(JSON([]Flash)) "." base64url(HMAC_SHA256(key, payload))
//
//   The signature stops a visitor (or another site) from planting messages
//   that would render under our domain.  A cookie that fails verification is
//   treated as empty.  Add appends to anything already pending, including
//   flashes set earlier in the same response; Pop returns the list and
//   clears the cookie.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const cookieName = "launchpad_flash"

// maxFlashes caps the list so the cookie stays under browser limits.
const maxFlashes = 10

// Flash categories used by the templates.
const (
	CategorySuccess = "success"
	CategoryError   = "error"
)

// Flash is one pending notification.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Success and Error are shorthands for the two categories the site uses.
func Success(msg string) Flash { return Flash{Category: CategorySuccess, Message: msg} }
func Error(msg string) Flash   { return Flash{Category: CategoryError, Message: msg} }

// Flashes reads and writes the flash cookie.  Safe for concurrent use.
type Flashes struct {
	key    []byte
	secure bool
}

// NewFlashes returns a flash store signing with key.  secure marks the
// cookie Secure (set when the site is served over HTTPS only).
func NewFlashes(key []byte, secure bool) *Flashes {
	return &Flashes{key: append([]byte(nil), key...), secure: secure}
}

// Add appends items to the pending flashes.
func (f *Flashes) Add(w http.ResponseWriter, r *http.Request, items ...Flash) {
	if len(items) == 0 {
		return
	}

	pending, ok := f.pendingInResponse(w)
	if !ok {
		pending = f.fromRequest(r)
	}
	pending = append(pending, items...)
	if len(pending) > maxFlashes {
		pending = pending[len(pending)-maxFlashes:]
	}

	f.dropResponseCookie(w)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    f.encode(pending),
		Path:     "/",
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending flashes and clears the cookie.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	out := f.fromRequest(r)
	if _, err := r.Cookie(cookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   f.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return out
}

/*──────────────────────────── encoding ─────────────────────────────────────*/

func (f *Flashes) encode(items []Flash) string {
	payload, _ := json.Marshal(items) // []Flash of strings cannot fail
	p := base64.RawURLEncoding.EncodeToString(payload)
	return p + "." + base64.RawURLEncoding.EncodeToString(f.sign(p))
}

func (f *Flashes) decode(v string) ([]Flash, bool) {
	p, s, ok := strings.Cut(v, ".")
	if !ok {
		return nil, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || !hmac.Equal(sig, f.sign(p)) {
		return nil, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return nil, false
	}
	var items []Flash
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false
	}
	return items, true
}

func (f *Flashes) sign(p string) []byte {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(p))
	return mac.Sum(nil)
}

/*──────────────────────────── cookie helpers ───────────────────────────────*/

func (f *Flashes) fromRequest(r *http.Request) []Flash {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	items, _ := f.decode(c.Value)
	return items
}

// pendingInResponse finds a flash cookie already set on w by an earlier Add
// or Pop.  A cleared cookie counts as an empty pending list.
func (f *Flashes) pendingInResponse(w http.ResponseWriter) ([]Flash, bool) {
	resp := http.Response{Header: w.Header()}
	var (
		items []Flash
		found bool
	)
	for _, c := range resp.Cookies() {
		if c.Name != cookieName {
			continue
		}
		found = true
		items, _ = f.decode(c.Value) // last one wins, as in the browser
	}
	return items, found
}

// dropResponseCookie removes flash Set-Cookie lines so only the newest list
// is sent.
func (f *Flashes) dropResponseCookie(w http.ResponseWriter) {
	h := w.Header()
	lines := h.Values("Set-Cookie")
	if len(lines) == 0 {
		return
	}
	kept := lines[:0:0]
	for _, l := range lines {
		if !strings.HasPrefix(l, cookieName+"=") {
			kept = append(kept, l)
		}
	}
	h.Del("Set-Cookie")
	for _, l := range kept {
		h.Add("Set-Cookie", l)
	}
}
