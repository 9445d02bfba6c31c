package handler

import (
	"encoding/json"
	"errors"
	"inkwell/internal/auth/model"
	"inkwell/internal/auth/service"
	"inkwell/internal/session"
	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
	"inkwell/pkg/response"
	"inkwell/socket"
	"io"
	"net/http"
)

type AuthHandler struct {
	Service *service.AuthService
	Hub     *socket.Hub
}

func NewAuthHandler(service *service.AuthService, hub *socket.Hub) *AuthHandler {
	return &AuthHandler{Service: service, Hub: hub}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.CredentialsRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	resp, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		logger.Sugar.Infof("Handler: Sign up failed: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.CredentialsRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	resp, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		logger.Sugar.Infof("Handler: Sign in failed: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.RefreshRequest
	if err := response.Decode(r, &req); err != nil {
		response.Error(w, err)
		return
	}

	resp, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		logger.Sugar.Infof("Handler: Refresh failed: %v", err)
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

// SignOut accepts an optional {"refresh_token"} body.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req model.RefreshRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, apperror.Wrap(apperror.InvalidInput, "Invalid request body", err))
			return
		}
	}

	if err := h.Service.SignOut(r.Context(), req.RefreshToken); err != nil {
		response.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// Events streams the caller's auth-state changes over a websocket.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, err := session.Require(r.Context(), "Unauthorized: No token provided")
	if err != nil {
		response.Error(w, err)
		return
	}
	socket.ServeWs(h.Hub, w, r, sess.UserID)
}
