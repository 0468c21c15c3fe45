package dto

import "stayquote/internal/domain/content"

// ContentText is the public value of one content key.
type ContentText struct {
	Text string `json:"text"`
}

// SiteContent maps every managed key to its current text.
type SiteContent map[string]ContentText

// ContentField is the admin view of a managed key.
type ContentField struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Section   string `json:"section"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	Custom    bool   `json:"custom"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func MapSiteContent(resolved []content.Resolved) SiteContent {
	out := make(SiteContent, len(resolved))
	for _, r := range resolved {
		out[r.Key] = ContentText{Text: r.Text}
	}
	return out
}

func MapContentField(r content.Resolved) ContentField {
	return ContentField{
		Key:       r.Key,
		Label:     r.Label,
		Section:   r.Section,
		Type:      string(r.Kind),
		Text:      r.Text,
		Custom:    r.Stored,
		UpdatedAt: formatTimestamp(r.UpdatedAt),
	}
}

func MapContentFields(resolved []content.Resolved) []ContentField {
	out := make([]ContentField, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, MapContentField(r))
	}
	return out
}
