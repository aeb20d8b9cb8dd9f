package httpapi

import (
	"encoding/base64"
	"errors"
	"net/http"

	"log/slog"

	"github.com/asaskevich/govalidator"

	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.rep.Campaign().ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list templates")
		return
	}
	writeSuccess(w, map[string]any{"templates": templates})
}

func (s *Server) handleAddTemplate(w http.ResponseWriter, r *http.Request) {
	var t entity.EmailTemplate
	if !decodeBody(w, r, &t) {
		return
	}
	if _, err := govalidator.ValidateStruct(&t); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.rep.Campaign().AddTemplate(r.Context(), &t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't add template")
		return
	}
	writeSuccess(w, map[string]any{"id": id})
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := s.rep.Campaign().DeleteTemplate(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "can't delete template")
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.rep.Campaign().ListCampaigns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list campaigns")
		return
	}
	writeSuccess(w, map[string]any{"campaigns": campaigns})
}

type campaignRequest struct {
	Name           string `json:"name" valid:"required"`
	SegmentID      int    `json:"segment_id" valid:"required"`
	TemplateID     int    `json:"template_id" valid:"required"`
	Subject        string `json:"subject" valid:"required"`
	FromName       string `json:"from_name"`
	FromEmail      string `json:"from_email" valid:"email,optional"`
	AttachmentName string `json:"attachment_name"`
	AttachmentType string `json:"attachment_type"`
	AttachmentB64  string `json:"attachment_b64"`
}

func (s *Server) handleAddCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AttachmentB64 != "" {
		if _, err := base64.StdEncoding.DecodeString(req.AttachmentB64); err != nil {
			writeError(w, http.StatusBadRequest, "attachment is not valid base64")
			return
		}
		if req.AttachmentName == "" || req.AttachmentType == "" {
			writeError(w, http.StatusBadRequest, "attachment needs name and type")
			return
		}
	}

	c := &entity.Campaign{
		Name:       req.Name,
		SegmentID:  req.SegmentID,
		TemplateID: req.TemplateID,
		Subject:    req.Subject,
		FromName:   req.FromName,
		FromEmail:  req.FromEmail,
	}
	if req.AttachmentB64 != "" {
		c.AttachmentName = nullString(req.AttachmentName)
		c.AttachmentType = nullString(req.AttachmentType)
		c.AttachmentB64 = nullString(req.AttachmentB64)
	}

	// referenced segment and template must exist before the draft is saved
	if _, err := s.rep.Segment().GetSegmentByID(r.Context(), c.SegmentID); err != nil {
		if errors.Is(err, gerr.ErrSegmentNotFound) {
			writeError(w, http.StatusBadRequest, "segment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "can't add campaign")
		return
	}
	if _, err := s.rep.Campaign().GetTemplateByID(r.Context(), c.TemplateID); err != nil {
		if errors.Is(err, gerr.ErrTemplateNotFound) {
			writeError(w, http.StatusBadRequest, "template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "can't add campaign")
		return
	}

	id, err := s.rep.Campaign().AddCampaign(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't add campaign")
		return
	}
	writeSuccess(w, map[string]any{"id": id})
}

func (s *Server) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	result, err := s.campaigns.Send(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, gerr.ErrCampaignNotFound):
			writeError(w, http.StatusNotFound, "campaign not found")
		case errors.Is(err, gerr.ErrNotDraft):
			writeError(w, http.StatusConflict, "campaign has already been sent")
		default:
			slog.Default().ErrorContext(r.Context(), "can't send campaign",
				slog.Int("campaignId", id),
				slog.String("err", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "can't send campaign")
		}
		return
	}
	writeSuccess(w, map[string]any{"result": result})
}
