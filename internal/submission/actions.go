// internal/submission/actions.go
//
// Launchpad – post-submit actions.
//
// Context
//   After a submission is accepted the Handler dispatches to the configured
//   actions: store (database row) and notify (e-mail to the site owner, for
//   contact messages only).  An action that is not configured is skipped.
//   Errors are logged and counted but not returned, keeping the visitor's
//   flow uninterrupted.  Actions run synchronously on the request context,
//   so a cancelled request cancels its pending writes.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"fmt"
	"strings"

	"github.com/yanizio/launchpad/internal/database"
	"github.com/yanizio/launchpad/internal/form"
	"github.com/yanizio/launchpad/internal/message"
	"github.com/yanizio/launchpad/internal/metrics"
)

const (
	actionStore  = "store"
	actionNotify = "notify"
)

func (h *Handler) contactActions(ctx context.Context, m *ContactMessage) {
	if h.store != nil {
		err := h.store.SaveContact(ctx, database.ContactRecord{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			Subject:     m.Subject,
			Message:     m.Message,
			SubmittedAt: h.now().UTC(),
		})
		h.logErr(form.ContactID, actionStore, m.ID, err)
	}

	if h.mailer != nil && len(h.notifyTo) > 0 {
		h.logErr(form.ContactID, actionNotify, m.ID, h.mailer.Send(ctx, contactEmail(m, h.notifyTo)))
	}
}

func (h *Handler) subscriptionActions(ctx context.Context, s *Subscription) {
	if h.store != nil {
		err := h.store.SaveSubscriber(ctx, database.SubscriberRecord{
			ID:           s.ID,
			Email:        s.Email,
			SubscribedAt: h.now().UTC(),
		})
		h.logErr(form.NewsletterID, actionStore, s.ID, err)
	}
}

// contactEmail builds the owner notification.  Visitor text is reduced to
// plain text first.
func contactEmail(m *ContactMessage, to []string) message.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:    %s\n", message.PlainText(m.Name))
	fmt.Fprintf(&b, "Email:   %s\n", m.Email)
	fmt.Fprintf(&b, "Subject: %s\n", m.Subject)
	fmt.Fprintf(&b, "ID:      %s\n\n", m.ID)
	b.WriteString(message.PlainText(m.Message))
	b.WriteString("\n")

	return message.Email{
		To:      to,
		Subject: fmt.Sprintf("[contact] %s from %s", m.Subject, message.PlainText(m.Name)),
		Text:    b.String(),
	}
}

// logErr records a failed action.  A nil err is a no-op.
func (h *Handler) logErr(formID, action, id string, err error) {
	if err == nil {
		return
	}
	metrics.FormActionErrors.WithLabelValues(formID, action).Inc()
	h.sink.Errorw("form action failed",
		"form", formID, "action", action, "id", id, "error", err.Error())
}
