package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/service"
	"github.com/solenne/studio-booking/pkg/config"
)

type Handlers struct {
	rules   service.RulesService
	catalog service.CatalogService
	auth    service.AuthService
	cfg     *config.Config
}

func New(
	rules service.RulesService,
	catalog service.CatalogService,
	auth service.AuthService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		rules:   rules,
		catalog: catalog,
		auth:    auth,
		cfg:     cfg,
	}
}

// setAuthCookies writes the access, refresh and CSRF cookies. The refresh
// cookie only rides on the auth subtree; the CSRF cookie is readable by
// the frontend so it can echo the value in X-CSRF-Token.
func (h *Handlers) setAuthCookies(w http.ResponseWriter, resp *domain.LoginResponse) {
	c := h.cfg.Cookies

	refreshTTL := h.cfg.Auth.RefreshTokenTTL
	if resp.Persistent {
		refreshTTL = h.cfg.Auth.RememberMeTokenTTL
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.AccessName,
		Value:    resp.AccessToken,
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(h.cfg.Auth.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     c.RefreshName,
		Value:    resp.RefreshToken,
		Path:     "/auth",
		Domain:   c.Domain,
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     c.CSRFName,
		Value:    uuid.NewString(),
		Path:     c.Path,
		Domain:   c.Domain,
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: false,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearAuthCookies(w http.ResponseWriter) {
	c := h.cfg.Cookies
	expired := time.Unix(0, 0)

	http.SetCookie(w, &http.Cookie{
		Name: c.AccessName, Value: "", Path: c.Path, Domain: c.Domain,
		Expires: expired, MaxAge: -1, HttpOnly: true, Secure: c.Secure,
	})
	http.SetCookie(w, &http.Cookie{
		Name: c.RefreshName, Value: "", Path: "/auth", Domain: c.Domain,
		Expires: expired, MaxAge: -1, HttpOnly: true, Secure: c.Secure,
	})
	http.SetCookie(w, &http.Cookie{
		Name: c.CSRFName, Value: "", Path: c.Path, Domain: c.Domain,
		Expires: expired, MaxAge: -1, Secure: c.Secure,
	})
}
