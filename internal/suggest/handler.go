package handler

import (
	"inkwell/internal/suggest/service"
	"inkwell/pkg/logger"
	"inkwell/pkg/response"
	"net/http"
)

type SuggestRequest struct {
	Text string `json:"text"`
}

type SuggestResponse struct {
	Suggestion string `json:"suggestion"`
}

type SuggestHandler struct {
	Service *service.SuggestService
}

func NewSuggestHandler(service *service.SuggestService) *SuggestHandler {
	return &SuggestHandler{Service: service}
}

func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SuggestRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	suggestion, err := h.Service.Improve(r.Context(), req.Text)
	if err != nil {
		logger.Sugar.Infof("Handler: Suggestion failed: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, SuggestResponse{Suggestion: suggestion})
}
