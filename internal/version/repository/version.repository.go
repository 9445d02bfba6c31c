package repository

import (
	"context"
	"database/sql"
	"inkwell/internal/version/model"
	"inkwell/pkg/logger"
)

// VersionRepository only inserts and reads; snapshots are never changed.
type VersionRepository struct {
	DB *sql.DB
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{DB: db}
}

func (r *VersionRepository) Insert(ctx context.Context, v *model.Version) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO document_versions (id, document_id, title, content, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at`,
		v.ID, v.DocumentID, v.Title, v.Content, v.CreatedBy).Scan(&v.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert version for doc %s: %v", v.DocumentID, err)
	}
	return err
}

// ListByDocument returns snapshots newest first.
func (r *VersionRepository) ListByDocument(ctx context.Context, docID string) ([]model.Version, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, document_id, title, content, created_by, created_at
		FROM document_versions WHERE document_id = $1 ORDER BY created_at DESC`, docID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list versions for doc %s: %v", docID, err)
		return nil, err
	}
	defer rows.Close()

	versions := []model.Version{}
	for rows.Next() {
		var v model.Version
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Title, &v.Content, &v.CreatedBy, &v.CreatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan version row: %v", err)
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *VersionRepository) Get(ctx context.Context, versionID string) (model.Version, error) {
	var v model.Version
	err := r.DB.QueryRowContext(ctx, `SELECT id, document_id, title, content, created_by, created_at
		FROM document_versions WHERE id = $1`, versionID).
		Scan(&v.ID, &v.DocumentID, &v.Title, &v.Content, &v.CreatedBy, &v.CreatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get version %s: %v", versionID, err)
	}
	return v, err
}
