package models

// Style selects the branding treatment applied during generation.
type Style string

const (
	StyleDefault   Style = "default"
	StyleSoulprint Style = "soulprint"
)

// DefaultClientName is the reserved admin tenant. It is created implicitly
// and can never be removed.
const DefaultClientName = "default"

// Client is a named tenant sharing the queue and rate-limit infrastructure.
type Client struct {
	Name             string `json:"name"`
	PostingAccountID string `json:"posting_account_id"`
	Style            Style  `json:"style"`
	PreviewMode      bool   `json:"preview_mode"`
}

// ClientSettings carries a partial update; nil fields are left untouched.
type ClientSettings struct {
	PostingAccountID *string `json:"posting_account_id,omitempty"`
	Style            *Style  `json:"style,omitempty"`
	PreviewMode      *bool   `json:"preview_mode,omitempty"`
}

// Merge applies the non-nil fields of s onto c.
func (c *Client) Merge(s ClientSettings) {
	if s.PostingAccountID != nil {
		c.PostingAccountID = *s.PostingAccountID
	}
	if s.Style != nil {
		c.Style = *s.Style
	}
	if s.PreviewMode != nil {
		c.PreviewMode = *s.PreviewMode
	}
}

// IsEmpty reports whether the settings carry no changes.
func (s ClientSettings) IsEmpty() bool {
	return s.PostingAccountID == nil && s.Style == nil && s.PreviewMode == nil
}

type CreateClientRequest struct {
	Name             string         `json:"name" binding:"required,min=2,max=100"`
	PostingAccountID string         `json:"posting_account_id"`
	Settings         ClientSettings `json:"settings"`
}

type UpdateClientRequest struct {
	PostingAccountID *string `json:"posting_account_id,omitempty"`
	Style            *Style  `json:"style,omitempty"`
	PreviewMode      *bool   `json:"preview_mode,omitempty"`
}
