package service

import (
	"context"
	"database/sql"
	"errors"
	"inkwell/internal/document/model"
	"inkwell/internal/session"
	"inkwell/pkg/apperror"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type Repository interface {
	Get(ctx context.Context, docID, userID string) (model.Document, error)
	Insert(ctx context.Context, d *model.Document) error
	Update(ctx context.Context, docID, userID, title string, content model.Content) (int64, error)
	ListByOwner(ctx context.Context, userID string) ([]model.Document, error)
}

type DocumentService struct {
	Repo Repository
}

func NewDocumentService(repo Repository) *DocumentService {
	return &DocumentService{Repo: repo}
}

func (s *DocumentService) Load(ctx context.Context, docID string) (model.Document, error) {
	sess, err := session.Require(ctx, "Please sign in to load documents")
	if err != nil {
		return model.Document{}, err
	}
	if docID == "" {
		return model.Document{}, apperror.Invalid("No document ID provided")
	}

	doc, err := s.Repo.Get(ctx, docID, sess.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, apperror.Missing("Document not found")
	}
	if err != nil {
		return model.Document{}, apperror.Store("Failed to load document", err)
	}
	return doc, nil
}

// Save inserts a new document when req.DocID is empty and returns its id;
// otherwise it updates the caller's existing row.
func (s *DocumentService) Save(ctx context.Context, req model.SaveDocRequest) (model.SaveDocResponse, error) {
	sess, err := session.Require(ctx, "Please sign in to save documents")
	if err != nil {
		return model.SaveDocResponse{}, err
	}

	if req.DocID == "" {
		title := req.Title
		if strings.TrimSpace(title) == "" {
			title = model.DefaultTitle
		}
		doc := model.Document{
			ID:      uuid.NewString(),
			Title:   title,
			Content: req.Content,
			UserID:  sess.UserID,
			Status:  model.StatusDraft,
		}
		if err := s.Repo.Insert(ctx, &doc); err != nil {
			return model.SaveDocResponse{}, apperror.Store("Failed to save document", err)
		}
		return model.SaveDocResponse{DocID: doc.ID, Created: true}, nil
	}

	rowsAffected, err := s.Repo.Update(ctx, req.DocID, sess.UserID, req.Title, req.Content)
	if err != nil {
		return model.SaveDocResponse{}, apperror.Store("Failed to save document", err)
	}
	if rowsAffected == 0 {
		return model.SaveDocResponse{}, apperror.Missing("Document not found")
	}
	return model.SaveDocResponse{DocID: req.DocID}, nil
}

func (s *DocumentService) List(ctx context.Context) ([]model.DocumentMetadata, error) {
	sess, err := session.Require(ctx, "Please sign in to view documents")
	if err != nil {
		return nil, err
	}
	docs, err := s.Repo.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, apperror.Store("Failed to list documents", err)
	}

	metas := make([]model.DocumentMetadata, 0, len(docs))
	for _, d := range docs {
		metas = append(metas, model.DocumentMetadata{
			ID:        d.ID,
			Title:     d.Title,
			Status:    d.Status,
			UpdatedAt: d.UpdatedAt,
			Snippet:   Snippet(d.Content.Text),
		})
	}
	return metas, nil
}

func (s *DocumentService) Export(ctx context.Context, docID string) (model.Export, error) {
	doc, err := s.Load(ctx, docID)
	if err != nil {
		return model.Export{}, err
	}
	return model.Export{Filename: ExportFilename(doc.Title), Body: []byte(doc.Content.Text)}, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename lower-cases the title and replaces whitespace runs with hyphens.
func ExportFilename(title string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(title), "-") + ".txt"
}

const snippetLength = 100

// Snippet returns the first characters of text on a single line.
func Snippet(text string) string {
	res := strings.TrimSpace(text)
	res = strings.ReplaceAll(res, "\n", " ")
	runes := []rune(res)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + "..."
	}
	return res
}
