package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solenne/studio-booking/internal/domain"
	mw "github.com/solenne/studio-booking/internal/http/middleware"
	"github.com/solenne/studio-booking/internal/platform/auth"
	"github.com/solenne/studio-booking/pkg/config"
)

// ---------- Stub services ----------

type stubRulesService struct {
	getFn      func(ctx context.Context) (*domain.BookingRules, error)
	updateFn   func(ctx context.Context, req *domain.UpdateRulesRequest) (*domain.BookingRules, error)
	createFn   func(ctx context.Context, req *domain.CreateBlockedPeriodRequest) (*domain.BlockedPeriod, error)
	updateBPFn func(ctx context.Context, id int64, req *domain.UpdateBlockedPeriodRequest) (*domain.BlockedPeriod, error)
	deleteFn   func(ctx context.Context, id int64) error
}

func (s *stubRulesService) Get(ctx context.Context) (*domain.BookingRules, error) {
	return s.getFn(ctx)
}

func (s *stubRulesService) Update(ctx context.Context, req *domain.UpdateRulesRequest) (*domain.BookingRules, error) {
	return s.updateFn(ctx, req)
}

func (s *stubRulesService) CreateBlockedPeriod(ctx context.Context, req *domain.CreateBlockedPeriodRequest) (*domain.BlockedPeriod, error) {
	return s.createFn(ctx, req)
}

func (s *stubRulesService) UpdateBlockedPeriod(ctx context.Context, id int64, req *domain.UpdateBlockedPeriodRequest) (*domain.BlockedPeriod, error) {
	return s.updateBPFn(ctx, id, req)
}

func (s *stubRulesService) DeleteBlockedPeriod(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubCatalogService struct {
	listFn   func(ctx context.Context, activeOnly bool) ([]domain.Service, error)
	getFn    func(ctx context.Context, id int64) (*domain.Service, error)
	createFn func(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error)
	updateFn func(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubCatalogService) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	return s.listFn(ctx, activeOnly)
}

func (s *stubCatalogService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	return s.createFn(ctx, req)
}

func (s *stubCatalogService) Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	return s.updateFn(ctx, id, req)
}

func (s *stubCatalogService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	refreshFn  func(ctx context.Context, raw string) (*domain.LoginResponse, error)
	validateFn func(ctx context.Context, raw string) (bool, error)
	revokeFn   func(ctx context.Context, raw string) error
	getUserFn  func(ctx context.Context, id int64) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) Refresh(ctx context.Context, raw string) (*domain.LoginResponse, error) {
	return s.refreshFn(ctx, raw)
}

func (s *stubAuthService) ValidateRefresh(ctx context.Context, raw string) (bool, error) {
	return s.validateFn(ctx, raw)
}

func (s *stubAuthService) Revoke(ctx context.Context, raw string) error {
	return s.revokeFn(ctx, raw)
}

func (s *stubAuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUserFn(ctx, id)
}

// ---------- Test harness ----------

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			Issuer:             "studio-booking",
			Audience:           "studio-booking-api",
			AccessTokenTTL:     15 * time.Minute,
			RefreshTokenTTL:    24 * time.Hour,
			RememberMeTokenTTL: 30 * 24 * time.Hour,
		},
		Cookies: config.CookieConfig{
			AccessName:  "sb_access",
			RefreshName: "sb_refresh",
			CSRFName:    "sb_csrf",
			Path:        "/",
		},
	}
}

// newTestRouter mounts the handlers behind the same middleware chain the
// server uses, minus logging and metrics.
func newTestRouter(h *Handlers, cfg *config.Config, mgr *auth.TokenManager) *chi.Mux {
	authn := mw.NewAuthenticator(mgr, cfg.Cookies.AccessName)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Get("/me", h.Me)
		})
	})
	r.Route("/booking-rules", func(r chi.Router) {
		r.Get("/", h.GetRules)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Use(authn.RequireRole("admin"))
			r.Use(mw.CSRF(cfg.Cookies.CSRFName))

			r.Patch("/", h.UpdateRules)
			r.Post("/blocked-periods", h.CreateBlockedPeriod)
			r.Patch("/blocked-periods/{id}", h.UpdateBlockedPeriod)
			r.Delete("/blocked-periods/{id}", h.DeleteBlockedPeriod)
		})
	})
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Get("/{id}", h.GetService)
	})
	return r
}

type fixture struct {
	rules   *stubRulesService
	catalog *stubCatalogService
	auth    *stubAuthService
	cfg     *config.Config
	mgr     *auth.TokenManager
	router  *chi.Mux
}

func newFixture() *fixture {
	cfg := testConfig()
	f := &fixture{
		rules:   &stubRulesService{},
		catalog: &stubCatalogService{},
		auth:    &stubAuthService{},
		cfg:     cfg,
		mgr: auth.NewTokenManager(
			cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.AccessTokenTTL,
		),
	}
	h := New(f.rules, f.catalog, f.auth, cfg)
	f.router = newTestRouter(h, cfg, f.mgr)
	return f
}

func (f *fixture) accessToken(t *testing.T, role string) string {
	t.Helper()
	tok, err := f.mgr.NewAccessToken(1, "owner@example.com", role)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec.Result()
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func loginResponse(persistent bool) *domain.LoginResponse {
	return &domain.LoginResponse{
		AccessToken:  "access-jwt",
		RefreshToken: "refresh-opaque",
		ExpiresIn:    900,
		User:         &domain.UserInfo{ID: 1, Email: "owner@example.com", Name: "Owner", Role: "admin"},
		Persistent:   persistent,
	}
}

// ---------- Auth endpoints ----------

func TestLoginSetsCookieTriple(t *testing.T) {
	f := newFixture()
	f.auth.loginFn = func(_ context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
		assert.Equal(t, "owner@example.com", req.Email)
		return loginResponse(false), nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"pw"}`))
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := resp.Cookies()
	access := findCookie(cookies, "sb_access")
	require.NotNil(t, access)
	assert.Equal(t, "access-jwt", access.Value)
	assert.True(t, access.HttpOnly)

	refresh := findCookie(cookies, "sb_refresh")
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-opaque", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, "/auth", refresh.Path)
	assert.Equal(t, int((24 * time.Hour).Seconds()), refresh.MaxAge)

	csrf := findCookie(cookies, "sb_csrf")
	require.NotNil(t, csrf)
	assert.False(t, csrf.HttpOnly)
	assert.NotEmpty(t, csrf.Value)
}

func TestLoginRememberMeExtendsRefreshCookie(t *testing.T) {
	f := newFixture()
	f.auth.loginFn = func(_ context.Context, _ *domain.LoginRequest) (*domain.LoginResponse, error) {
		return loginResponse(true), nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"owner@example.com","password":"pw","remember":true}`))
	resp := f.do(req)
	defer resp.Body.Close()

	refresh := findCookie(resp.Cookies(), "sb_refresh")
	require.NotNil(t, refresh)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestLoginFailureStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"locked account", domain.ErrAccountLocked, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.auth.loginFn = func(_ context.Context, _ *domain.LoginRequest) (*domain.LoginResponse, error) {
				return nil, tt.err
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login",
				strings.NewReader(`{"email":"owner@example.com","password":"pw"}`))
			resp := f.do(req)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Nil(t, findCookie(resp.Cookies(), "sb_access"))
		})
	}
}

func TestRefreshReadsCookieFirst(t *testing.T) {
	f := newFixture()
	var seen string
	f.auth.refreshFn = func(_ context.Context, raw string) (*domain.LoginResponse, error) {
		seen = raw
		return loginResponse(false), nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refresh_token":"from-body"}`))
	req.AddCookie(&http.Cookie{Name: "sb_refresh", Value: "from-cookie"})
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-cookie", seen)
}

func TestRefreshFallsBackToBody(t *testing.T) {
	f := newFixture()
	var seen string
	f.auth.refreshFn = func(_ context.Context, raw string) (*domain.LoginResponse, error) {
		seen = raw
		return loginResponse(false), nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refresh_token":"from-body"}`))
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "from-body", seen)
}

func TestRefreshInvalidTokenClearsCookies(t *testing.T) {
	f := newFixture()
	f.auth.refreshFn = func(_ context.Context, _ string) (*domain.LoginResponse, error) {
		return nil, domain.ErrInvalidToken
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "sb_refresh", Value: "stale"})
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	for _, name := range []string{"sb_access", "sb_refresh", "sb_csrf"} {
		c := findCookie(resp.Cookies(), name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value, name)
		assert.Equal(t, -1, c.MaxAge, name)
	}
}

func TestRefreshMissingToken(t *testing.T) {
	f := newFixture()
	f.auth.refreshFn = func(_ context.Context, _ string) (*domain.LoginResponse, error) {
		t.Fatal("service should not be called without a token")
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutAlwaysNoContent(t *testing.T) {
	f := newFixture()
	revoked := ""
	f.auth.revokeFn = func(_ context.Context, raw string) error {
		revoked = raw
		return nil
	}

	t.Run("with refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: "sb_refresh", Value: "rt"})
		resp := f.do(req)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "rt", revoked)
		access := findCookie(resp.Cookies(), "sb_access")
		require.NotNil(t, access)
		assert.Equal(t, -1, access.MaxAge)
	})

	t.Run("without refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		resp := f.do(req)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestMeRequiresAuth(t *testing.T) {
	f := newFixture()
	f.auth.getUserFn = func(_ context.Context, id int64) (*domain.User, error) {
		return &domain.User{ID: id, Email: "owner@example.com", Name: "Owner", Role: "admin"}, nil
	}

	t.Run("no credentials", func(t *testing.T) {
		resp := f.do(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+f.accessToken(t, "admin"))
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("access cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "sb_access", Value: f.accessToken(t, "admin")})
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

// ---------- Booking rules endpoints ----------

func TestGetRulesIsPublic(t *testing.T) {
	f := newFixture()
	f.rules.getFn = func(_ context.Context) (*domain.BookingRules, error) {
		return &domain.BookingRules{ID: 1, TimeZone: "Europe/Amsterdam"}, nil
	}

	resp := f.do(httptest.NewRequest(http.MethodGet, "/booking-rules/", nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateRulesRequiresAuth(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPatch, "/booking-rules/",
		strings.NewReader(`{"buffer_minutes":30}`))
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateRulesForbidsNonAdmin(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodPatch, "/booking-rules/",
		strings.NewReader(`{"buffer_minutes":30}`))
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t, "staff"))
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCookieAuthedMutationNeedsCSRF(t *testing.T) {
	f := newFixture()
	f.rules.updateFn = func(_ context.Context, _ *domain.UpdateRulesRequest) (*domain.BookingRules, error) {
		return &domain.BookingRules{ID: 1}, nil
	}
	token := f.accessToken(t, "admin")

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPatch, "/booking-rules/",
			strings.NewReader(`{"buffer_minutes":30}`))
		req.AddCookie(&http.Cookie{Name: "sb_access", Value: token})
		return req
	}

	t.Run("missing header", func(t *testing.T) {
		resp := f.do(newReq())
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("mismatched header", func(t *testing.T) {
		req := newReq()
		req.AddCookie(&http.Cookie{Name: "sb_csrf", Value: "expected"})
		req.Header.Set(mw.CSRFHeader, "other")
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("matching header", func(t *testing.T) {
		req := newReq()
		req.AddCookie(&http.Cookie{Name: "sb_csrf", Value: "expected"})
		req.Header.Set(mw.CSRFHeader, "expected")
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestBearerAuthedMutationSkipsCSRF(t *testing.T) {
	f := newFixture()
	f.rules.updateFn = func(_ context.Context, _ *domain.UpdateRulesRequest) (*domain.BookingRules, error) {
		return &domain.BookingRules{ID: 1}, nil
	}

	req := httptest.NewRequest(http.MethodPatch, "/booking-rules/",
		strings.NewReader(`{"buffer_minutes":30}`))
	req.Header.Set("Authorization", "Bearer "+f.accessToken(t, "admin"))
	resp := f.do(req)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateBlockedPeriodStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"created", nil, http.StatusCreated},
		{"overlap", domain.ErrOverlap, http.StatusConflict},
		{"invalid interval", domain.ErrInvalidInput, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.rules.createFn = func(_ context.Context, _ *domain.CreateBlockedPeriodRequest) (*domain.BlockedPeriod, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.BlockedPeriod{ID: 9, RulesID: 1}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/booking-rules/blocked-periods",
				strings.NewReader(`{"start_time":"2026-03-10T14:00:00Z","end_time":"2026-03-10T16:00:00Z"}`))
			req.Header.Set("Authorization", "Bearer "+f.accessToken(t, "admin"))
			resp := f.do(req)
			defer resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestDeleteBlockedPeriod(t *testing.T) {
	f := newFixture()
	f.rules.deleteFn = func(_ context.Context, id int64) error {
		if id == 9 {
			return nil
		}
		return domain.ErrNotFound
	}
	token := f.accessToken(t, "admin")

	t.Run("existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/booking-rules/blocked-periods/9", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/booking-rules/blocked-periods/404", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/booking-rules/blocked-periods/abc", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp := f.do(req)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// ---------- Catalog endpoints ----------

func TestListServicesEmptyIsJSONArray(t *testing.T) {
	f := newFixture()
	f.catalog.listFn = func(_ context.Context, _ bool) ([]domain.Service, error) {
		return nil, nil
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/services/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListServicesActiveFilter(t *testing.T) {
	f := newFixture()
	var seen bool
	f.catalog.listFn = func(_ context.Context, activeOnly bool) ([]domain.Service, error) {
		seen = activeOnly
		return []domain.Service{{ID: 1, Name: "Deep clean", Active: true}}, nil
	}

	resp := f.do(httptest.NewRequest(http.MethodGet, "/services/?active=true", nil))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, seen)
}

func TestGetServiceNotFound(t *testing.T) {
	f := newFixture()
	f.catalog.getFn = func(_ context.Context, _ int64) (*domain.Service, error) {
		return nil, domain.ErrNotFound
	}

	resp := f.do(httptest.NewRequest(http.MethodGet, "/services/5", nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
