package entity

import "database/sql"

type CampaignStatus string

const (
	CampaignStatusDraft         CampaignStatus = "draft"
	CampaignStatusSending       CampaignStatus = "sending"
	CampaignStatusSent          CampaignStatus = "sent"
	CampaignStatusPartiallySent CampaignStatus = "partially_sent"
	CampaignStatusFailed        CampaignStatus = "failed"
)

// Campaign references a segment and a template and tracks the dispatch
// state machine: draft -> sending -> sent | partially_sent | failed.
type Campaign struct {
	ID             int            `db:"id"`
	Name           string         `db:"name" valid:"required"`
	SegmentID      int            `db:"segment_id" valid:"required"`
	TemplateID     int            `db:"template_id" valid:"required"`
	Subject        string         `db:"subject" valid:"required"`
	FromName       string         `db:"from_name"`
	FromEmail      string         `db:"from_email" valid:"email"`
	AttachmentName sql.NullString `db:"attachment_name"`
	AttachmentType sql.NullString `db:"attachment_type"`
	AttachmentB64  sql.NullString `db:"attachment_b64"`
	Status         CampaignStatus `db:"status"`
	EmailsSent     int            `db:"emails_sent"`
	CreatedAt      sql.NullTime   `db:"created_at"`
}

// EmailTemplate is a stored campaign body. Tokens of the form {{field}} are
// substituted per recipient at send time.
type EmailTemplate struct {
	ID        int          `db:"id"`
	Name      string       `db:"name" valid:"required"`
	HTML      string       `db:"html" valid:"required"`
	CreatedAt sql.NullTime `db:"created_at"`
}
