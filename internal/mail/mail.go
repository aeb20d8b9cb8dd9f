package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

type Config struct {
	APIKey         string        `mapstructure:"sendgrid_api_key"`
	FromEmail      string        `mapstructure:"from_email"`
	FromName       string        `mapstructure:"from_email_name"`
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
}

type Mailer struct {
	cli            *sendgrid.Client
	mailRepository dependency.Mail
	c              *Config
	ctx            context.Context
	cancel         context.CancelFunc
}

func New(c *Config, mailRepository dependency.Mail) (dependency.Mailer, error) {
	if c.APIKey == "" || c.FromEmail == "" || c.FromName == "" {
		return nil, fmt.Errorf("incomplete mailer config: api key, from email and from name are required")
	}
	if c.WorkerInterval == 0 {
		c.WorkerInterval = 5 * time.Minute
	}
	return &Mailer{
		cli:            sendgrid.NewSendClient(c.APIKey),
		mailRepository: mailRepository,
		c:              c,
	}, nil
}

// Send delivers one message with a single provider call. Attachments are
// passed through base64-encoded as the provider expects.
func (m *Mailer) Send(ctx context.Context, msg *entity.Email) error {
	fromName := msg.FromName
	fromEmail := msg.FromEmail
	if fromEmail == "" {
		fromName = m.c.FromName
		fromEmail = m.c.FromEmail
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(sgmail.NewEmail(fromName, fromEmail))
	v3.Subject = msg.Subject

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail("", msg.To))
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/html", msg.HTML))

	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(a.ContentB64)
		att.SetFilename(a.Filename)
		att.SetType(a.ContentType)
		v3.AddAttachment(att)
	}

	resp, err := m.cli.SendWithContext(ctx, v3)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return gerr.MailApiLimitReached
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("error sending email bad status code: %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// SendWithOutbox records the message in the outbox before attempting
// delivery; a provider failure leaves the row unsent for the worker to
// retry.
func (m *Mailer) SendWithOutbox(ctx context.Context, rep dependency.Repository, msg *entity.Email) error {
	id, err := rep.Mail().AddMail(ctx, &entity.SendEmailRequest{
		To:        msg.To,
		Subject:   msg.Subject,
		HTML:      msg.HTML,
		FromName:  msg.FromName,
		FromEmail: msg.FromEmail,
	})
	if err != nil {
		return fmt.Errorf("error inserting email: %w", err)
	}

	if err := m.Send(ctx, msg); err != nil {
		// send failed, the worker will retry it
		slog.Default().ErrorContext(ctx, "can't send mail",
			slog.String("err", err.Error()),
		)
		return nil
	}

	if err := rep.Mail().UpdateSent(ctx, id); err != nil {
		return fmt.Errorf("error updating email: %w", err)
	}
	return nil
}
