// internal/database/store.go
//
// SubmissionStore persists accepted form submissions.
//
// Rows are written with sqlx named statements so the column list and the
// struct tags stay side by side.  Subscribers are de-duplicated by the
// unique index on email (INSERT IGNORE), so a repeated signup is not an
// error.

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ContactRecord is one row of contact_message.
type ContactRecord struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Subject     string    `db:"subject"`
	Message     string    `db:"message"`
	SubmittedAt time.Time `db:"submitted_at"`
}

// SubscriberRecord is one row of newsletter_subscriber.
type SubscriberRecord struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	SubscribedAt time.Time `db:"subscribed_at"`
}

// Schema creates the tables used by SubmissionStore.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS contact_message (
	    id           CHAR(36)     NOT NULL PRIMARY KEY,
	    name         VARCHAR(50)  NOT NULL,
	    email        VARCHAR(254) NOT NULL,
	    subject      VARCHAR(32)  NOT NULL,
	    message      TEXT         NOT NULL,
	    submitted_at DATETIME(6)  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS newsletter_subscriber (
	    id            CHAR(36)     NOT NULL PRIMARY KEY,
	    email         VARCHAR(254) NOT NULL,
	    subscribed_at DATETIME(6)  NOT NULL,
	    UNIQUE KEY uq_newsletter_email (email)
	)`,
}

const (
	insertContact = `INSERT INTO contact_message (id, name, email, subject, message, submitted_at) ` +
		`VALUES (:id, :name, :email, :subject, :message, :submitted_at)`
	insertSubscriber = `INSERT IGNORE INTO newsletter_subscriber (id, email, subscribed_at) ` +
		`VALUES (:id, :email, :subscribed_at)`
)

// SubmissionStore writes submissions through sqlx.
type SubmissionStore struct {
	db *sqlx.DB
}

// NewSubmissionStore wraps db.
func NewSubmissionStore(db *sqlx.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// SaveContact inserts one contact message.
func (s *SubmissionStore) SaveContact(ctx context.Context, rec ContactRecord) error {
	if _, err := s.db.NamedExecContext(ctx, insertContact, rec); err != nil {
		return fmt.Errorf("insert contact_message: %w", err)
	}
	return nil
}

// SaveSubscriber records a newsletter signup.  Duplicates are ignored.
func (s *SubmissionStore) SaveSubscriber(ctx context.Context, rec SubscriberRecord) error {
	if _, err := s.db.NamedExecContext(ctx, insertSubscriber, rec); err != nil {
		return fmt.Errorf("insert newsletter_subscriber: %w", err)
	}
	return nil
}
