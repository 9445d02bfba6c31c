package model

import (
	"time"

	docmodel "inkwell/internal/document/model"
)

// Version is an immutable snapshot of a document's title and content.
type Version struct {
	ID         string           `json:"id"`
	DocumentID string           `json:"document_id"`
	Title      string           `json:"title"`
	Content    docmodel.Content `json:"content"`
	CreatedBy  string           `json:"created_by"`
	CreatedAt  time.Time        `json:"created_at"`
}

type SaveVersionRequest struct {
	DocumentID string           `json:"document_id"`
	Title      string           `json:"title"`
	Content    docmodel.Content `json:"content"`
}
