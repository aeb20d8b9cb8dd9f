// Package campaign resolves a segment's members and dispatches a rendered
// email to each, up to a hard per-invocation cap.
package campaign

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

// SendCap is the hard recipient limit per invocation. Recipients beyond
// the cap are left unsent and reported as truncated, not queued.
const SendCap = 50

// SendFailure records one recipient the provider rejected.
type SendFailure struct {
	Email string `json:"email"`
	Err   string `json:"error"`
}

// Result is the outcome of one dispatch invocation.
type Result struct {
	CampaignID int                   `json:"campaign_id"`
	Recipients int                   `json:"recipients"`
	Attempted  int                   `json:"attempted"`
	EmailsSent int                   `json:"emails_sent"`
	Skipped    int                   `json:"skipped"`
	Truncated  bool                  `json:"truncated"`
	Failures   []SendFailure         `json:"failures,omitempty"`
	Status     entity.CampaignStatus `json:"status"`
}

// Config holds dispatch settings. ReportEmail, when set, receives a
// completion summary for every finished campaign through the mail
// outbox, so a provider hiccup never loses the report.
type Config struct {
	ReportEmail string `mapstructure:"report_email"`
}

type Service struct {
	c      *Config
	rep    dependency.Repository
	mailer dependency.Mailer
}

func New(c *Config, rep dependency.Repository, mailer dependency.Mailer) *Service {
	return &Service{c: c, rep: rep, mailer: mailer}
}

// Send moves the campaign through draft -> sending -> terminal status.
// Per-recipient failures are collected, never aborting the batch; the
// terminal status reflects the actual outcome: sent only when every
// attempted send succeeded, failed when none did, partially_sent in
// between.
func (s *Service) Send(ctx context.Context, campaignID int) (*Result, error) {
	c, err := s.rep.Campaign().GetCampaignByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != entity.CampaignStatusDraft {
		return nil, gerr.ErrNotDraft
	}

	seg, err := s.rep.Segment().GetSegmentByID(ctx, c.SegmentID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.rep.Campaign().GetTemplateByID(ctx, c.TemplateID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.rep.Segment().ResolveSegmentClients(ctx, seg)
	if err != nil {
		return nil, err
	}

	if err := s.rep.Campaign().SetCampaignStatus(ctx, campaignID, entity.CampaignStatusSending, 0); err != nil {
		return nil, err
	}

	res := s.dispatch(ctx, c, tmpl, recipients)

	if err := s.rep.Campaign().SetCampaignStatus(ctx, campaignID, res.Status, res.EmailsSent); err != nil {
		return nil, fmt.Errorf("failed to finalize campaign %d: %w", campaignID, err)
	}

	s.reportFinished(ctx, c.Name, res)
	return res, nil
}

// reportFinished mails a completion summary to the configured operator
// address. The mail goes through the outbox; a report failure never
// fails the campaign itself.
func (s *Service) reportFinished(ctx context.Context, name string, res *Result) {
	if s.c == nil || s.c.ReportEmail == "" {
		return
	}
	msg := &entity.Email{
		To:      s.c.ReportEmail,
		Subject: fmt.Sprintf("campaign %q finished: %s", name, res.Status),
		HTML: fmt.Sprintf(
			"<p>Campaign %q finished with status %s.</p><p>Recipients: %d, attempted: %d, sent: %d, failed: %d, skipped: %d.</p>",
			name, res.Status, res.Recipients, res.Attempted, res.EmailsSent, len(res.Failures), res.Skipped,
		),
	}
	if err := s.mailer.SendWithOutbox(ctx, s.rep, msg); err != nil {
		slog.Default().ErrorContext(ctx, "can't queue campaign report mail",
			slog.Int("campaign_id", res.CampaignID),
			slog.String("err", err.Error()),
		)
	}
}

func (s *Service) dispatch(ctx context.Context, c *entity.Campaign, tmpl *entity.EmailTemplate, recipients []entity.Client) *Result {
	res := &Result{
		CampaignID: c.ID,
		Recipients: len(recipients),
	}

	// Unsubscribed clients and clients without an email address are
	// dropped before the cap is applied, so the cap spends only on
	// deliverable recipients.
	deliverable := make([]entity.Client, 0, len(recipients))
	for _, r := range recipients {
		if r.Unsubscribed || !r.Email.Valid || r.Email.String == "" {
			continue
		}
		deliverable = append(deliverable, r)
	}

	if len(deliverable) > SendCap {
		res.Truncated = true
		res.Skipped = len(deliverable) - SendCap
		deliverable = deliverable[:SendCap]
	}

	var attachments []entity.EmailAttachment
	if c.AttachmentB64.Valid && c.AttachmentName.Valid {
		attachments = append(attachments, entity.EmailAttachment{
			Filename:    c.AttachmentName.String,
			ContentType: c.AttachmentType.String,
			ContentB64:  c.AttachmentB64.String,
		})
	}

	for i := range deliverable {
		r := &deliverable[i]
		res.Attempted++

		fields := RecipientFields(r)
		msg := &entity.Email{
			To:          r.Email.String,
			Subject:     Render(c.Subject, fields),
			HTML:        Render(tmpl.HTML, fields),
			FromName:    c.FromName,
			FromEmail:   c.FromEmail,
			Attachments: attachments,
		}

		if err := s.mailer.Send(ctx, msg); err != nil {
			slog.Default().ErrorContext(ctx, "campaign send failed for recipient",
				slog.Int("campaign_id", c.ID),
				slog.String("to", r.Email.String),
				slog.String("err", err.Error()),
			)
			res.Failures = append(res.Failures, SendFailure{Email: r.Email.String, Err: err.Error()})
			continue
		}
		res.EmailsSent++
	}

	switch {
	case res.Attempted == 0 || res.EmailsSent == res.Attempted:
		res.Status = entity.CampaignStatusSent
	case res.EmailsSent == 0:
		res.Status = entity.CampaignStatusFailed
	default:
		res.Status = entity.CampaignStatusPartiallySent
	}
	return res
}
