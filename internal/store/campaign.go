package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

type campaignStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Campaign() dependency.Campaign {
	return &campaignStore{MYSQLStore: ms}
}

const campaignColumns = `id, name, segment_id, template_id, subject, from_name, from_email,
	attachment_name, attachment_type, attachment_b64, status, emails_sent, created_at`

func (ms *MYSQLStore) AddCampaign(ctx context.Context, c *entity.Campaign) (int, error) {
	query := `
	INSERT INTO campaigns
		(name, segment_id, template_id, subject, from_name, from_email,
		attachment_name, attachment_type, attachment_b64, status, emails_sent, created_at)
	VALUES
		(:name, :segmentId, :templateId, :subject, :fromName, :fromEmail,
		:attachmentName, :attachmentType, :attachmentB64, :status, 0, NOW())`

	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"name":           c.Name,
		"segmentId":      c.SegmentID,
		"templateId":     c.TemplateID,
		"subject":        c.Subject,
		"fromName":       c.FromName,
		"fromEmail":      c.FromEmail,
		"attachmentName": c.AttachmentName,
		"attachmentType": c.AttachmentType,
		"attachmentB64":  c.AttachmentB64,
		"status":         entity.CampaignStatusDraft,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add campaign: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) GetCampaignByID(ctx context.Context, id int) (*entity.Campaign, error) {
	c, err := QueryNamedOne[entity.Campaign](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = :id`, campaignColumns),
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("can't fetch campaign %d: %w", id, err)
	}
	return &c, nil
}

func (ms *MYSQLStore) ListCampaigns(ctx context.Context) ([]entity.Campaign, error) {
	campaigns, err := QueryListNamed[entity.Campaign](ctx, ms.DB(),
		fmt.Sprintf(`SELECT %s FROM campaigns ORDER BY created_at DESC`, campaignColumns),
		map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't fetch campaigns: %w", err)
	}
	return campaigns, nil
}

func (ms *MYSQLStore) SetCampaignStatus(ctx context.Context, id int, status entity.CampaignStatus, emailsSent int) error {
	err := ExecNamed(ctx, ms.DB(), `
	UPDATE campaigns SET status = :status, emails_sent = :emailsSent WHERE id = :id`,
		map[string]any{
			"id":         id,
			"status":     status,
			"emailsSent": emailsSent,
		})
	if err != nil {
		return fmt.Errorf("can't set campaign %d status: %w", id, err)
	}
	return nil
}

func (ms *MYSQLStore) AddTemplate(ctx context.Context, t *entity.EmailTemplate) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
	INSERT INTO email_templates (name, html, created_at) VALUES (:name, :html, NOW())`,
		map[string]any{"name": t.Name, "html": t.HTML})
	if err != nil {
		return 0, fmt.Errorf("can't add email template: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) GetTemplateByID(ctx context.Context, id int) (*entity.EmailTemplate, error) {
	t, err := QueryNamedOne[entity.EmailTemplate](ctx, ms.DB(), `
	SELECT id, name, html, created_at FROM email_templates WHERE id = :id`,
		map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("can't fetch email template %d: %w", id, err)
	}
	return &t, nil
}

func (ms *MYSQLStore) ListTemplates(ctx context.Context) ([]entity.EmailTemplate, error) {
	templates, err := QueryListNamed[entity.EmailTemplate](ctx, ms.DB(), `
	SELECT id, name, html, created_at FROM email_templates ORDER BY created_at DESC`,
		map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't fetch email templates: %w", err)
	}
	return templates, nil
}

func (ms *MYSQLStore) DeleteTemplate(ctx context.Context, id int) error {
	err := ExecNamed(ctx, ms.DB(), `DELETE FROM email_templates WHERE id = :id`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete email template %d: %w", id, err)
	}
	return nil
}
