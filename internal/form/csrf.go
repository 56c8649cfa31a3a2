// internal/form/csrf.go
//
// Launchpad – Forms subsystem: stateless CSRF tokens.
//
// Context
//   Every rendered form embeds a hidden `csrf_token` input.  The CSRF
//   middleware verifies it on unsafe methods so a POST is only accepted when
//   it originated from a page we rendered.  Tokens are stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – keyed by a secret derived from `site.secret_key`.
//
//   Verification checks the signature and that the issue time lies within
//   MaxAge (`site.csrf_time_limit`, one hour by default).  No server-side
//   state, so any number of instances can verify each other's tokens.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"time"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig

	// DefaultCSRFMaxAge matches the site's historic one-hour limit.
	DefaultCSRFMaxAge = time.Hour

	// CSRFField is the hidden input name carried by every form.
	CSRFField = "csrf_token"
)

// maxSkew tolerates issuers whose clock runs slightly ahead.
const maxSkew = time.Minute

// CSRF issues and verifies tokens.  Safe for concurrent use.
type CSRF struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewCSRF returns a token service.  key should carry at least 32 bytes of
// entropy; maxAge ≤ 0 selects DefaultCSRFMaxAge.
func NewCSRF(key []byte, maxAge time.Duration) (*CSRF, error) {
	if len(key) == 0 {
		return nil, errors.New("csrf: empty key")
	}
	if maxAge <= 0 {
		maxAge = DefaultCSRFMaxAge
	}
	return &CSRF{key: append([]byte(nil), key...), maxAge: maxAge, now: time.Now}, nil
}

// Generate creates a new token.  Call once per form render.
func (c *CSRF) Generate() (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok passes the HMAC and age checks.
func (c *CSRF) Verify(tok string) bool {
	if tok == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:nonceBytes]
	tsBytes := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	age := c.now().Sub(issued)
	if age > c.maxAge || age < -maxSkew {
		return false
	}

	return hmac.Equal(sig, c.sign(nonce, tsBytes))
}

// MaxAge reports the token lifetime.
func (c *CSRF) MaxAge() time.Duration { return c.maxAge }

func (c *CSRF) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
