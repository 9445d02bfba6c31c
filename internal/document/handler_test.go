package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"inkwell/internal/document/repository"
	"inkwell/internal/document/service"
	"inkwell/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*DocumentHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDocumentHandler(service.NewDocumentService(repository.NewDocumentRepository(db))), mock
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(session.WithSession(context.Background(), session.Session{UserID: userID}))
}

func TestSaveDocument_Create(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), "Offer Letter", sqlmock.AnyArg(), "user-1", "draft").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	body := `{"title":"Offer Letter","content":{"text":"Dear [Name]..."}}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/documents/save", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()

	h.SaveDocument(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["document_id"])
	assert.Equal(t, true, resp["created"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDocument_UpdateNotOwned(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectExec("UPDATE documents").
		WithArgs("New", sqlmock.AnyArg(), "doc-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := `{"document_id":"doc-1","title":"New","content":{"text":""}}`
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/documents/save", strings.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()

	h.SaveDocument(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Document not found")
}

func TestSaveDocument_BadRequests(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	h.SaveDocument(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/save", nil), "user-1"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.SaveDocument(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/documents/save", strings.NewReader("{")), "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.SaveDocument(rec, httptest.NewRequest(http.MethodPost, "/api/documents/save", strings.NewReader(`{"title":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please sign in to save documents")
}

func TestGetDocument(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Now()
	mock.ExpectQuery("SELECT id, title, content").
		WithArgs("doc-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "status", "created_at", "updated_at"}).
			AddRow("doc-1", "Offer Letter", []byte(`{"text":"Dear [Name]..."}`), "user-1", "draft", now, now))

	rec := httptest.NewRecorder()
	h.GetDocument(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/get?docId=doc-1", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Offer Letter", doc["title"])
	assert.Equal(t, map[string]any{"text": "Dear [Name]..."}, doc["content"])
}

func TestGetDocument_NotFound(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("SELECT id, title, content").
		WithArgs("doc-404", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "status", "created_at", "updated_at"}))

	rec := httptest.NewRecorder()
	h.GetDocument(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/get?docId=doc-404", nil), "user-1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.GetDocument(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/get", nil), "user-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDocument(t *testing.T) {
	h, mock := newHandler(t)
	now := time.Now()
	mock.ExpectQuery("SELECT id, title, content").
		WithArgs("doc-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "status", "created_at", "updated_at"}).
			AddRow("doc-1", "Offer Letter", []byte(`{"text":"Dear [Name]..."}`), "user-1", "draft", now, now))

	rec := httptest.NewRecorder()
	h.ExportDocument(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents/export?docId=doc-1", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=offer-letter.txt", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Dear [Name]...", rec.Body.String())
}

func TestGetDocuments(t *testing.T) {
	h, mock := newHandler(t)
	mock.ExpectQuery("FROM documents WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "user_id", "status", "created_at", "updated_at"}))

	rec := httptest.NewRecorder()
	h.GetDocuments(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/documents", nil), "user-1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
