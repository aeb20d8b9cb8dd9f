package gerr

import "errors"

var (
	ErrInvalidPeriod    = errors.New("invalid period: from is after to")
	ErrSegmentNotFound  = errors.New("segment not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrTemplateNotFound = errors.New("email template not found")
	ErrNotDraft         = errors.New("campaign is not in draft status")
	ErrUnknownRuleField = errors.New("unknown segment rule field")
	MailApiLimitReached = errors.New("mail api limit reached")
)
