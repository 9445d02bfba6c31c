package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	StatusDraft  = "draft"
	DefaultTitle = "Untitled Document"
)

// Content is the structured body stored in the jsonb column.
type Content struct {
	Text string `json:"text"`
}

func (c Content) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (c *Content) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Content{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported content type %T", src)
	}
	if len(raw) == 0 {
		*c = Content{}
		return nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return errors.New("content is not a {text} object")
	}
	return nil
}

type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   Content   `json:"content"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DocumentMetadata struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	Snippet   string    `json:"snippet"`
}

// SaveDocRequest creates a document when DocID is empty and updates it otherwise.
type SaveDocRequest struct {
	DocID   string  `json:"document_id,omitempty"`
	Title   string  `json:"title"`
	Content Content `json:"content"`
}

type SaveDocResponse struct {
	DocID   string `json:"document_id"`
	Created bool   `json:"created"`
}

// Export is a plain-text rendition of a document ready for download.
type Export struct {
	Filename string
	Body     []byte
}
