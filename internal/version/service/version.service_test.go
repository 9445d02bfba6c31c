package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	docmodel "inkwell/internal/document/model"
	"inkwell/internal/session"
	"inkwell/internal/version/model"
	"inkwell/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryVersions struct {
	rows  []model.Version
	clock time.Time
	err   error
}

func (m *memoryVersions) Insert(_ context.Context, v *model.Version) error {
	if m.err != nil {
		return m.err
	}
	m.clock = m.clock.Add(time.Second)
	v.CreatedAt = m.clock
	m.rows = append(m.rows, *v)
	return nil
}

func (m *memoryVersions) ListByDocument(_ context.Context, docID string) ([]model.Version, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Version{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].DocumentID == docID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memoryVersions) Get(_ context.Context, versionID string) (model.Version, error) {
	for _, v := range m.rows {
		if v.ID == versionID {
			return v, nil
		}
	}
	return model.Version{}, sql.ErrNoRows
}

// ownedDocs maps document id to owner.
type ownedDocs map[string]string

func (o ownedDocs) Get(_ context.Context, docID, userID string) (docmodel.Document, error) {
	if owner, ok := o[docID]; ok && owner == userID {
		return docmodel.Document{ID: docID, UserID: owner}, nil
	}
	return docmodel.Document{}, sql.ErrNoRows
}

func signedIn(userID string) context.Context {
	return session.WithSession(context.Background(), session.Session{UserID: userID})
}

func newService() (*VersionService, *memoryVersions) {
	repo := &memoryVersions{clock: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	return NewVersionService(repo, ownedDocs{"doc-1": "user-1"}), repo
}

func TestSave_AppendOnlyNewestFirst(t *testing.T) {
	svc, repo := newService()
	ctx := signedIn("user-1")

	for i := 0; i < 3; i++ {
		_, err := svc.Save(ctx, model.SaveVersionRequest{
			DocumentID: "doc-1",
			Title:      "Offer Letter",
			Content:    docmodel.Content{Text: "same"},
		})
		require.NoError(t, err)
	}
	assert.Len(t, repo.rows, 3, "identical snapshots are not deduplicated")

	versions, err := svc.List(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	for i := 1; i < len(versions); i++ {
		assert.True(t, versions[i-1].CreatedAt.After(versions[i].CreatedAt))
	}
	assert.Equal(t, "user-1", versions[0].CreatedBy)
	assert.NotEqual(t, versions[0].ID, versions[1].ID)
}

func TestList_EmptyHistory(t *testing.T) {
	svc, _ := newService()
	versions, err := svc.List(signedIn("user-1"), "doc-1")
	require.NoError(t, err)
	assert.NotNil(t, versions)
	assert.Empty(t, versions)
}

func TestSave_OwnershipAndSession(t *testing.T) {
	svc, repo := newService()

	_, err := svc.Save(context.Background(), model.SaveVersionRequest{DocumentID: "doc-1"})
	assert.True(t, apperror.Is(err, apperror.AuthRequired))

	_, err = svc.Save(signedIn("user-2"), model.SaveVersionRequest{DocumentID: "doc-1"})
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.Save(signedIn("user-1"), model.SaveVersionRequest{})
	assert.True(t, apperror.Is(err, apperror.InvalidInput))

	assert.Empty(t, repo.rows)
}

func TestSave_StoreError(t *testing.T) {
	svc, repo := newService()
	repo.err = errors.New("disk full")
	_, err := svc.Save(signedIn("user-1"), model.SaveVersionRequest{DocumentID: "doc-1"})
	assert.True(t, apperror.Is(err, apperror.StoreError))
}

func TestGet(t *testing.T) {
	svc, _ := newService()
	saved, err := svc.Save(signedIn("user-1"), model.SaveVersionRequest{
		DocumentID: "doc-1",
		Title:      "Draft",
		Content:    docmodel.Content{Text: "v1"},
	})
	require.NoError(t, err)

	got, err := svc.Get(signedIn("user-1"), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.Content.Text)

	_, err = svc.Get(signedIn("user-2"), saved.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.Get(signedIn("user-1"), "missing")
	assert.True(t, apperror.Is(err, apperror.NotFound))

	_, err = svc.Get(signedIn("user-1"), "")
	assert.True(t, apperror.Is(err, apperror.InvalidInput))
}
