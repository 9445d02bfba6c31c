package service

import (
	"context"
	"database/sql"
	"errors"
	docmodel "inkwell/internal/document/model"
	"inkwell/internal/session"
	"inkwell/internal/version/model"
	"inkwell/pkg/apperror"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, v *model.Version) error
	ListByDocument(ctx context.Context, docID string) ([]model.Version, error)
	Get(ctx context.Context, versionID string) (model.Version, error)
}

// Documents resolves a document scoped to its owner. The document repository
// satisfies it.
type Documents interface {
	Get(ctx context.Context, docID, userID string) (docmodel.Document, error)
}

type VersionService struct {
	Repo      Repository
	Documents Documents
}

func NewVersionService(repo Repository, docs Documents) *VersionService {
	return &VersionService{Repo: repo, Documents: docs}
}

// List returns the document's snapshots newest first, or an empty slice.
func (s *VersionService) List(ctx context.Context, docID string) ([]model.Version, error) {
	sess, err := session.Require(ctx, "Please sign in to view versions")
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, docID, sess.UserID); err != nil {
		return nil, err
	}

	versions, err := s.Repo.ListByDocument(ctx, docID)
	if err != nil {
		return nil, apperror.Store("Failed to list versions", err)
	}
	return versions, nil
}

// Save appends a snapshot. Identical consecutive snapshots are kept.
func (s *VersionService) Save(ctx context.Context, req model.SaveVersionRequest) (model.Version, error) {
	sess, err := session.Require(ctx, "Please sign in to save versions")
	if err != nil {
		return model.Version{}, err
	}
	if err := s.checkOwner(ctx, req.DocumentID, sess.UserID); err != nil {
		return model.Version{}, err
	}

	v := model.Version{
		ID:         uuid.NewString(),
		DocumentID: req.DocumentID,
		Title:      req.Title,
		Content:    req.Content,
		CreatedBy:  sess.UserID,
	}
	if err := s.Repo.Insert(ctx, &v); err != nil {
		return model.Version{}, apperror.Store("Failed to save version", err)
	}
	return v, nil
}

func (s *VersionService) Get(ctx context.Context, versionID string) (model.Version, error) {
	sess, err := session.Require(ctx, "Please sign in to view versions")
	if err != nil {
		return model.Version{}, err
	}
	if versionID == "" {
		return model.Version{}, apperror.Invalid("No version ID provided")
	}

	v, err := s.Repo.Get(ctx, versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Version{}, apperror.Missing("Version not found")
	}
	if err != nil {
		return model.Version{}, apperror.Store("Failed to load version", err)
	}
	if err := s.checkOwner(ctx, v.DocumentID, sess.UserID); err != nil {
		if apperror.Is(err, apperror.NotFound) {
			return model.Version{}, apperror.Missing("Version not found")
		}
		return model.Version{}, err
	}
	return v, nil
}

func (s *VersionService) checkOwner(ctx context.Context, docID, userID string) error {
	if docID == "" {
		return apperror.Invalid("No document ID provided")
	}
	_, err := s.Documents.Get(ctx, docID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Missing("Document not found")
	}
	if err != nil {
		return apperror.Store("Failed to load document", err)
	}
	return nil
}
