package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type mailStore struct {
	*MYSQLStore
}

// Mail returns an object implementing mail interface
func (ms *MYSQLStore) Mail() dependency.Mail {
	return &mailStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error) {
	query := `
	INSERT INTO
	send_email_requests
		(to_email, subject, html, from_name, from_email, sent, sent_at)
	VALUES
		(:toEmail, :subject, :html, :fromName, :fromEmail, :sent, :sentAt)
	`
	params := map[string]any{
		"toEmail":   ser.To,
		"subject":   ser.Subject,
		"html":      ser.HTML,
		"fromName":  ser.FromName,
		"fromEmail": ser.FromEmail,
		"sent":      ser.Sent,
	}
	if ser.Sent {
		params["sentAt"] = sql.NullTime{Time: time.Now(), Valid: true}
	} else {
		params["sentAt"] = sql.NullTime{Time: time.Now(), Valid: false}
	}

	id, err := ExecNamedLastId(ctx, ms.DB(), query, params)
	if err != nil {
		return 0, fmt.Errorf("failed to add mail: %w", err)
	}

	return id, nil
}

func (ms *MYSQLStore) GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error) {
	var query string

	if withError {
		query = `SELECT id, to_email, subject, html, from_name, from_email, sent, sent_at, err_msg
		FROM send_email_requests WHERE sent = false`
	} else {
		query = `SELECT id, to_email, subject, html, from_name, from_email, sent, sent_at, err_msg
		FROM send_email_requests WHERE sent = false AND err_msg IS NULL`
	}

	srs, err := QueryListNamed[entity.SendEmailRequest](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to get unsent mails: %w", err)
	}

	return srs, nil
}

func (ms *MYSQLStore) UpdateSent(ctx context.Context, id int) error {
	query := `UPDATE send_email_requests SET sent = true, sent_at = :sentAt WHERE id = :id`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"id":     id,
		"sentAt": sql.NullTime{Time: time.Now(), Valid: true},
	})
	if err != nil {
		return fmt.Errorf("failed to update sent: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) AddError(ctx context.Context, id int, errMsg string) error {
	query := `UPDATE send_email_requests SET err_msg = :errMsg WHERE id = :id`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"id":     id,
		"errMsg": errMsg,
	})
	if err != nil {
		return fmt.Errorf("failed to add error: %w", err)
	}
	return nil
}
