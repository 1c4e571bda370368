package renderer

import (
	"errors"
	"fmt"

	"searchsync-backend/internal/record/domain"
)

// DocumentBody is the API-ready representation of one record
type DocumentBody map[string]interface{}

// Renderer produces the document body sent to the remote index.
// A nil body or an error aborts the dispatch before any remote call.
type Renderer interface {
	Render(record *domain.Record) (DocumentBody, error)
}

// fieldRenderer is the default renderer mapping record fields directly
type fieldRenderer struct {
	siteURL string
}

func NewFieldRenderer(siteURL string) Renderer {
	return &fieldRenderer{siteURL: siteURL}
}

func (r *fieldRenderer) Render(record *domain.Record) (DocumentBody, error) {
	if record == nil {
		return nil, errors.New("cannot render nil record")
	}
	return DocumentBody{
		"record_id": record.ID,
		"type":      record.Type,
		"title":     record.Title,
		"content":   record.Content,
		"language":  record.Language,
		"modified":  record.ModifiedAt.Format("2006-01-02T15:04:05"),
		"url":       fmt.Sprintf("%s/?p=%d", r.siteURL, record.ID),
	}, nil
}
