package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solenne/studio-booking/internal/domain"
	mw "github.com/solenne/studio-booking/internal/http/middleware"
	"github.com/solenne/studio-booking/internal/http/response"
)

// Login authenticates the admin user and sets the auth cookie triple.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		response.MapError(w, r, err)
		return
	}

	h.setAuthCookies(w, resp)
	response.WriteJSON(w, http.StatusOK, resp)
}

// Refresh rotates the token pair. The refresh token is read from its
// cookie first, then from the body for non-browser clients. Any failure
// is a plain 401: cause is deliberately not distinguished.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshTokenFromRequest(r)
	if raw == "" {
		response.Unauthorized(w, "missing refresh token")
		return
	}

	resp, err := h.auth.Refresh(r.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			h.clearAuthCookies(w)
		}
		response.MapError(w, r, err)
		return
	}

	h.setAuthCookies(w, resp)
	response.WriteJSON(w, http.StatusOK, resp)
}

// Logout revokes the presented refresh token and clears cookies. Always
// 204: revocation is idempotent and an absent token changes nothing.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if raw := h.refreshTokenFromRequest(r); raw != "" {
		if err := h.auth.Revoke(r.Context(), raw); err != nil {
			response.MapError(w, r, err)
			return
		}
	}

	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	claims := mw.Claims(r)
	if claims == nil {
		response.Unauthorized(w, "missing credentials")
		return
	}

	user, err := h.auth.GetUser(r.Context(), claims.Sub)
	if err != nil {
		response.MapError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user.ToUserInfo())
}

func (h *Handlers) refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(h.cfg.Cookies.RefreshName); err == nil && c.Value != "" {
		return c.Value
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}
