// internal/message/message.go
//
// Launchpad – Outbound mail.
//
// Context
//   Accepted contact messages can notify the site owner by e-mail.  Callers
//   depend only on the Mailer interface.  Two implementations ship here:
//
//   •  LogMailer – logs the payload and returns nil.  Used when no mail server
//      is configured so development setups work without SMTP.
//   •  SMTPMailer – delivers through `mail.server` with optional STARTTLS and
//      PLAIN auth (smtp.go).
//
//   Visitor-supplied text is reduced to plain text with PlainText before it
//   is placed in a mail body.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package message

import (
	"context"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Email represents a basic outbound email job.
type Email struct {
	To      []string
	Subject string
	Text    string
}

// Mailer delivers one Email.  Implementations must be safe for concurrent
// use.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// LogMailer logs the email payload instead of sending it.
type LogMailer struct {
	Log *zap.SugaredLogger
}

// Send implements Mailer.
func (m LogMailer) Send(_ context.Context, msg Email) error {
	log := m.Log
	if log == nil {
		log = zap.S()
	}
	log.Infow("mail not configured; logging email",
		"to", msg.To, "subject", msg.Subject, "len_text", len(msg.Text))
	return nil
}

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy
)

// PlainText strips every tag from s and decodes entities, leaving the text a
// person typed.
func PlainText(s string) string {
	strictOnce.Do(func() { strictPolicy = bluemonday.StrictPolicy() })
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
