package handler

import (
	"inkwell/internal/document/model"
	"inkwell/internal/document/service"
	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
	"inkwell/pkg/response"
	"mime"
	"net/http"
	"strconv"
)

type DocumentHandler struct {
	Service *service.DocumentService
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{Service: service}
}

func (h *DocumentHandler) GetDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docs, err := h.Service.List(r.Context())
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to list documents: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		response.Error(w, apperror.Invalid("Missing docId parameter"))
		return
	}

	doc, err := h.Service.Load(r.Context(), docID)
	if err != nil {
		logger.Sugar.Infof("Handler: Failed to load document %s: %v", docID, err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.SaveDocRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	result, err := h.Service.Save(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save document %q: %v", req.DocID, err)
		response.Error(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(w, status, result)
}

func (h *DocumentHandler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docID := r.URL.Query().Get("docId")
	if docID == "" {
		response.Error(w, apperror.Invalid("Missing docId parameter"))
		return
	}

	export, err := h.Service.Export(r.Context(), docID)
	if err != nil {
		logger.Sugar.Infof("Handler: Failed to export document %s: %v", docID, err)
		response.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Body)
}
