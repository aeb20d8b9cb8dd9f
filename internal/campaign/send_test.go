package campaign

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/dependency/dependencytest"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

// fakeMailer records sent messages and fails for addresses in failFor.
type fakeMailer struct {
	sent    []entity.Email
	failFor map[string]bool
}

func (m *fakeMailer) Send(ctx context.Context, msg *entity.Email) error {
	if m.failFor[msg.To] {
		return errors.New("provider rejected")
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func (m *fakeMailer) SendWithOutbox(ctx context.Context, rep dependency.Repository, msg *entity.Email) error {
	id, err := rep.Mail().AddMail(ctx, &entity.SendEmailRequest{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}
	if err := m.Send(ctx, msg); err != nil {
		return nil
	}
	return rep.Mail().UpdateSent(ctx, id)
}

func (m *fakeMailer) Start(ctx context.Context) error { return nil }
func (m *fakeMailer) Stop() error                     { return nil }

func recipient(id int64, email string) entity.Client {
	c := entity.Client{HyperzodID: id, Name: fmt.Sprintf("Client %d", id)}
	if email != "" {
		c.Email = sql.NullString{String: email, Valid: true}
	}
	return c
}

func campaignFixture(recipients []entity.Client) *dependencytest.FakeRepository {
	return &dependencytest.FakeRepository{
		Segments: map[int]*entity.SegmentFull{
			1: {Segment: entity.Segment{ID: 1, Name: "all", Kind: entity.SegmentKindDynamic}},
		},
		SegmentClients: map[int][]entity.Client{1: recipients},
		Templates: map[int]*entity.EmailTemplate{
			1: {ID: 1, Name: "welcome", HTML: "<p>Hi {{name}}</p>"},
		},
		Campaigns: map[int]*entity.Campaign{
			1: {
				ID:         1,
				Name:       "june promo",
				SegmentID:  1,
				TemplateID: 1,
				Subject:    "Hello {{name}}",
				FromEmail:  "ops@mealmarkt.nl",
				Status:     entity.CampaignStatusDraft,
			},
		},
	}
}

func TestSend(t *testing.T) {
	recipients := []entity.Client{
		recipient(1, "a@example.com"),
		recipient(2, "b@example.com"),
	}
	rep := campaignFixture(recipients)
	mailer := &fakeMailer{}

	res, err := New(nil, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Recipients)
	assert.Equal(t, 2, res.Attempted)
	assert.Equal(t, 2, res.EmailsSent)
	assert.False(t, res.Truncated)
	assert.Equal(t, entity.CampaignStatusSent, res.Status)

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Hello Client 1", mailer.sent[0].Subject)
	assert.Equal(t, "<p>Hi Client 1</p>", mailer.sent[0].HTML)

	// status walked draft -> sending -> sent
	require.Len(t, rep.StatusUpdates, 2)
	assert.Equal(t, entity.CampaignStatusSending, rep.StatusUpdates[0].Status)
	assert.Equal(t, entity.CampaignStatusSent, rep.StatusUpdates[1].Status)
	assert.Equal(t, 2, rep.StatusUpdates[1].EmailsSent)
}

func TestSend_ReportMailQueuedThroughOutbox(t *testing.T) {
	recipients := []entity.Client{
		recipient(1, "a@example.com"),
		recipient(2, "b@example.com"),
	}
	rep := campaignFixture(recipients)
	mailer := &fakeMailer{}

	res, err := New(&Config{ReportEmail: "ops@mealmarkt.io"}, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, entity.CampaignStatusSent, res.Status)

	// the completion summary lands in the outbox for the worker to own
	require.Len(t, rep.Outbox, 1)
	report := rep.Outbox[0]
	assert.Equal(t, "ops@mealmarkt.io", report.To)
	assert.Equal(t, `campaign "june promo" finished: sent`, report.Subject)
	assert.Contains(t, report.HTML, "sent: 2")
	assert.True(t, report.Sent)

	// campaign recipients are still sent directly, not queued
	require.Len(t, mailer.sent, 3)
	assert.Equal(t, "ops@mealmarkt.io", mailer.sent[2].To)
}

func TestSend_NoReportWithoutConfig(t *testing.T) {
	rep := campaignFixture([]entity.Client{recipient(1, "a@example.com")})

	_, err := New(nil, rep, &fakeMailer{}).Send(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rep.Outbox)
}

func TestSend_CapTruncates(t *testing.T) {
	recipients := make([]entity.Client, 0, 75)
	for i := 1; i <= 75; i++ {
		recipients = append(recipients, recipient(int64(i), fmt.Sprintf("c%d@example.com", i)))
	}
	rep := campaignFixture(recipients)
	mailer := &fakeMailer{}

	res, err := New(nil, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 75, res.Recipients)
	assert.Equal(t, SendCap, res.Attempted)
	assert.Equal(t, SendCap, res.EmailsSent)
	assert.Equal(t, 25, res.Skipped)
	assert.True(t, res.Truncated)
	assert.Equal(t, entity.CampaignStatusSent, res.Status)
	assert.Len(t, mailer.sent, SendCap)
}

func TestSend_SkipsUndeliverableBeforeCap(t *testing.T) {
	recipients := []entity.Client{
		recipient(1, "a@example.com"),
		recipient(2, ""), // no email
	}
	unsubscribed := recipient(3, "c@example.com")
	unsubscribed.Unsubscribed = true
	recipients = append(recipients, unsubscribed)

	rep := campaignFixture(recipients)
	mailer := &fakeMailer{}

	res, err := New(nil, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Recipients)
	assert.Equal(t, 1, res.Attempted)
	assert.Equal(t, 1, res.EmailsSent)
	assert.False(t, res.Truncated)
}

func TestSend_PartialFailure(t *testing.T) {
	recipients := []entity.Client{
		recipient(1, "a@example.com"),
		recipient(2, "b@example.com"),
	}
	rep := campaignFixture(recipients)
	mailer := &fakeMailer{failFor: map[string]bool{"b@example.com": true}}

	res, err := New(nil, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, res.EmailsSent)
	assert.Equal(t, entity.CampaignStatusPartiallySent, res.Status)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "b@example.com", res.Failures[0].Email)
}

func TestSend_AllFail(t *testing.T) {
	recipients := []entity.Client{recipient(1, "a@example.com")}
	rep := campaignFixture(recipients)
	mailer := &fakeMailer{failFor: map[string]bool{"a@example.com": true}}

	res, err := New(nil, rep, mailer).Send(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, entity.CampaignStatusFailed, res.Status)
}

func TestSend_EmptySegmentIsSent(t *testing.T) {
	rep := campaignFixture(nil)
	res, err := New(nil, rep, &fakeMailer{}).Send(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Attempted)
	assert.Equal(t, entity.CampaignStatusSent, res.Status)
}

func TestSend_NotDraft(t *testing.T) {
	rep := campaignFixture(nil)
	rep.Campaigns[1].Status = entity.CampaignStatusSent

	_, err := New(nil, rep, &fakeMailer{}).Send(context.Background(), 1)
	assert.ErrorIs(t, err, gerr.ErrNotDraft)
}

func TestSend_UnknownCampaign(t *testing.T) {
	rep := campaignFixture(nil)
	_, err := New(nil, rep, &fakeMailer{}).Send(context.Background(), 99)
	assert.ErrorIs(t, err, gerr.ErrCampaignNotFound)
}
