package entity

import "database/sql"

// EmailAttachment is a base64-encoded file attached to an outgoing email.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ContentB64  string `json:"content_b64"`
}

// Email is one message handed to the delivery provider.
type Email struct {
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	HTML        string            `json:"html"`
	FromName    string            `json:"from_name"`
	FromEmail   string            `json:"from_email"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
}

// SendEmailRequest represents the send_email_requests outbox table. System
// mails that fail at the provider are retried by the mail worker.
type SendEmailRequest struct {
	ID        int            `db:"id"`
	To        string         `db:"to_email"`
	Subject   string         `db:"subject"`
	HTML      string         `db:"html"`
	FromName  string         `db:"from_name"`
	FromEmail string         `db:"from_email"`
	Sent      bool           `db:"sent"`
	SentAt    sql.NullTime   `db:"sent_at"`
	ErrMsg    sql.NullString `db:"err_msg"`
}
