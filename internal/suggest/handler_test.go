package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"inkwell/internal/suggest/client"
	"inkwell/internal/suggest/service"

	"github.com/stretchr/testify/assert"
)

func newHandler(t *testing.T, upstream http.HandlerFunc) (*SuggestHandler, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)
	llm := client.New(client.Options{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	return NewSuggestHandler(service.NewSuggestService(llm)), &calls
}

func TestSuggest(t *testing.T) {
	h, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"Dear Ms. Doe,"}}]}`))
	})

	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/api/suggest", strings.NewReader(`{"text":"hi jane"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"suggestion":"Dear Ms. Doe,"}`, rec.Body.String())
}

func TestSuggest_NoText(t *testing.T) {
	h, calls := newHandler(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/api/suggest", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"No text provided"}`, rec.Body.String())
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSuggest_UpstreamFailure(t *testing.T) {
	h, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	})

	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/api/suggest", strings.NewReader(`{"text":"hi"}`)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to get AI suggestion","details":{"message":"Rate limit reached"}}`, rec.Body.String())
}

func TestSuggest_MethodNotAllowed(t *testing.T) {
	h, _ := newHandler(t, func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodGet, "/api/suggest", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
