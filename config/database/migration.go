package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema mirrors the hosted tables. Versions have no update path; rows are
// only ever inserted.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS documents (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	content JSONB NOT NULL DEFAULT '{"text": ""}',
	user_id UUID NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_documents_user_updated ON documents(user_id, updated_at DESC);

CREATE TABLE IF NOT EXISTS document_versions (
	id UUID PRIMARY KEY,
	document_id UUID NOT NULL REFERENCES documents(id),
	title TEXT NOT NULL,
	content JSONB NOT NULL,
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_document_versions_document_created ON document_versions(document_id, created_at DESC);
`

// Migrate creates the tables if they don't exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
