package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	docrepo "inkwell/internal/document/repository"
	"inkwell/internal/session"
	"inkwell/internal/version/model"
	"inkwell/internal/version/repository"
	"inkwell/internal/version/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docColumns = []string{"id", "title", "content", "user_id", "status", "created_at", "updated_at"}

func newHandler(t *testing.T) (*VersionHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := service.NewVersionService(repository.NewVersionRepository(db), docrepo.NewDocumentRepository(db))
	return NewVersionHandler(svc), mock
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(session.WithSession(context.Background(), session.Session{UserID: userID}))
}

func expectOwnedDoc(mock sqlmock.Sqlmock, docID, userID string) {
	now := time.Now()
	mock.ExpectQuery("FROM documents WHERE id = \\$1 AND user_id = \\$2").
		WithArgs(docID, userID).
		WillReturnRows(sqlmock.NewRows(docColumns).
			AddRow(docID, "Offer Letter", []byte(`{"text":""}`), userID, "draft", now, now))
}

func TestSaveVersion(t *testing.T) {
	h, mock := newHandler(t)
	expectOwnedDoc(mock, "doc-1", "user-1")
	mock.ExpectQuery("INSERT INTO document_versions").
		WithArgs(sqlmock.AnyArg(), "doc-1", "Offer Letter", sqlmock.AnyArg(), "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body := `{"document_id":"doc-1","title":"Offer Letter","content":{"text":"Dear [Name]..."}}`
	rec := httptest.NewRecorder()
	h.SaveVersion(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/documents/versions/save", strings.NewReader(body)), "user-1"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var v model.Version
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "Dear [Name]...", v.Content.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveVersion_NotOwner(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("FROM documents WHERE id").
		WithArgs("doc-1", "user-2").
		WillReturnRows(sqlmock.NewRows(docColumns))

	body := `{"document_id":"doc-1","title":"x","content":{"text":""}}`
	rec := httptest.NewRecorder()
	h.SaveVersion(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/documents/versions/save", strings.NewReader(body)), "user-2"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVersions(t *testing.T) {
	h, mock := newHandler(t)
	expectOwnedDoc(mock, "doc-1", "user-1")
	mock.ExpectQuery("FROM document_versions WHERE document_id").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "title", "content", "created_by", "created_at"}).
			AddRow("ver-2", "doc-1", "B", []byte(`{"text":"two"}`), "user-1", time.Now()).
			AddRow("ver-1", "doc-1", "A", []byte(`{"text":"one"}`), "user-1", time.Now().Add(-time.Hour)))

	rec := httptest.NewRecorder()
	h.GetVersions(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/versions?docId=doc-1", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var versions []model.Version
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 2)
	assert.Equal(t, "ver-2", versions[0].ID)
}

func TestGetVersions_Unauthenticated(t *testing.T) {
	h, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.GetVersions(rec, httptest.NewRequest(http.MethodGet, "/api/documents/versions?docId=doc-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetVersion_MissingID(t *testing.T) {
	h, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.GetVersion(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/versions/get", nil), "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
