package handler

import (
	"inkwell/internal/version/model"
	"inkwell/internal/version/service"
	"inkwell/pkg/logger"
	"inkwell/pkg/response"
	"net/http"
)

type VersionHandler struct {
	Service *service.VersionService
}

func NewVersionHandler(service *service.VersionService) *VersionHandler {
	return &VersionHandler{Service: service}
}

func (h *VersionHandler) GetVersions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	docID := r.URL.Query().Get("docId")
	versions, err := h.Service.List(r.Context(), docID)
	if err != nil {
		logger.Sugar.Infof("Handler: Failed to list versions for %s: %v", docID, err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, versions)
}

func (h *VersionHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	versionID := r.URL.Query().Get("versionId")
	v, err := h.Service.Get(r.Context(), versionID)
	if err != nil {
		logger.Sugar.Infof("Handler: Failed to load version %s: %v", versionID, err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, v)
}

func (h *VersionHandler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.SaveVersionRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	v, err := h.Service.Save(r.Context(), req)
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to save version of %s: %v", req.DocumentID, err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, v)
}
