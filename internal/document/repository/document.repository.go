package repository

import (
	"context"
	"database/sql"
	"inkwell/internal/document/model"
	"inkwell/pkg/logger"
)

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// Get returns sql.ErrNoRows when the document does not exist or belongs to
// someone else.
func (r *DocumentRepository) Get(ctx context.Context, docID, userID string) (model.Document, error) {
	var d model.Document
	err := r.DB.QueryRowContext(ctx, `SELECT id, title, content, user_id, status, created_at, updated_at
		FROM documents WHERE id = $1 AND user_id = $2`, docID, userID).
		Scan(&d.ID, &d.Title, &d.Content, &d.UserID, &d.Status, &d.CreatedAt, &d.UpdatedAt)
	if err != nil && err != sql.ErrNoRows {
		logger.Sugar.Errorf("Failed to get doc %s: %v", docID, err)
	}
	return d, err
}

// Insert stores a new row and fills in the server-side timestamps.
func (r *DocumentRepository) Insert(ctx context.Context, d *model.Document) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO documents (id, title, content, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`,
		d.ID, d.Title, d.Content, d.UserID, d.Status).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
	}
	return err
}

// Update changes title and content of a row owned by userID. Owner and status
// are never touched.
func (r *DocumentRepository) Update(ctx context.Context, docID, userID, title string, content model.Content) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `UPDATE documents SET title = $1, content = $2, updated_at = NOW() WHERE id = $3 AND user_id = $4`,
		title, content, docID, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update doc %s: %v", docID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, userID string) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, title, content, user_id, status, created_at, updated_at
		FROM documents WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get documents for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.UserID, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan document row: %v", err)
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
