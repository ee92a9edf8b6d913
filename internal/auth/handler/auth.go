package handler

import (
	"errors"
	"net/http"
	"strings"

	"slotbook/internal/auth/oauth"
	"slotbook/internal/auth/service"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service      service.AuthService
	callbackBase string
	log          *logger.Logger
}

// NewAuthHandler builds OAuth callback URLs from callbackBase, or from the
// request host when callbackBase is empty.
func NewAuthHandler(service service.AuthService, callbackBase string, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		callbackBase: strings.TrimRight(callbackBase, "/"),
		log:          log,
	}
}

func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	provider := ps.ByName("provider")

	out, err := h.service.AuthorizationURL(provider, h.callbackURL(r, provider))
	if err != nil {
		h.writeError(w, "Authorize", err)
		return
	}

	if err := httputil.WriteSuccess(w, out); err != nil {
		h.log.Error("failed to write success response", "handler", "Authorize", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	provider := ps.ByName("provider")
	query := r.URL.Query()
	params := oauth.CallbackParams{
		Code:  query.Get("code"),
		Error: query.Get("error"),
	}

	out, err := h.service.OAuthCallback(r.Context(), provider, params, h.callbackURL(r, provider))
	if err != nil {
		h.writeError(w, "Callback", err)
		return
	}

	if err := httputil.WriteSuccess(w, out); err != nil {
		h.log.Error("failed to write success response", "handler", "Callback", "operation", "WriteSuccess", "error", err)
	}
}

// Token is the password grant. The username field carries the email.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		var appErr error = apperrors.InvalidInput("invalid form body")
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			appErr = apperrors.TooLarge(maxErr.Limit)
		}
		h.writeError(w, "Token", appErr)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.writeError(w, "Token", apperrors.Validation("Invalid login form", map[string]any{
			"username": "username and password are required",
		}))
		return
	}

	pair, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		h.writeError(w, "Token", err)
		return
	}

	if err := httputil.WriteSuccess(w, pair); err != nil {
		h.log.Error("failed to write success response", "handler", "Token", "operation", "WriteSuccess", "error", err)
	}
}

// Refresh takes the refresh token from the query string or a JSON body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw := r.URL.Query().Get("refresh_token")
	if raw == "" && r.ContentLength != 0 {
		var body model.RefreshRequest
		if err := httputil.DecodeJSON(r, &body); err != nil {
			h.writeError(w, "Refresh", err)
			return
		}
		raw = body.RefreshToken
	}
	if raw == "" {
		h.writeError(w, "Refresh", apperrors.Validation("Invalid refresh request", map[string]any{
			"refresh_token": "refresh_token is required",
		}))
		return
	}

	out, err := h.service.Refresh(r.Context(), raw)
	if err != nil {
		h.writeError(w, "Refresh", err)
		return
	}

	if err := httputil.WriteSuccess(w, out); err != nil {
		h.log.Error("failed to write success response", "handler", "Refresh", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AuthHandler) callbackURL(r *http.Request, provider string) string {
	base := h.callbackBase
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/callback/" + provider
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/authorize/:provider", h.Authorize)
	router.GET("/callback/:provider", h.Callback)
	router.POST("/token", h.Token)
	router.POST("/refresh", h.Refresh)
}
