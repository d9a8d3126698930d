package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	loginErr   error
	refreshErr error
	logoutErr  error
	healthErr  error

	gotLogout  [2]string
	gotRefresh string
}

func (f *fakeService) pair() goToken.TokenPair {
	return goToken.TokenPair{
		TokenType:    goToken.TokenTypeBearer,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    3600,
	}
}

func (f *fakeService) Login(_ context.Context, _, _ string) (goToken.TokenPair, error) {
	if f.loginErr != nil {
		return goToken.TokenPair{}, f.loginErr
	}
	return f.pair(), nil
}

func (f *fakeService) Refresh(_ context.Context, token string) (goToken.TokenPair, error) {
	f.gotRefresh = token
	if f.refreshErr != nil {
		return goToken.TokenPair{}, f.refreshErr
	}
	return f.pair(), nil
}

func (f *fakeService) Logout(_ context.Context, access, refresh string) error {
	f.gotLogout = [2]string{access, refresh}
	return f.logoutErr
}

func (f *fakeService) Authenticate(_ context.Context, token string) (*goToken.Identity, error) {
	if token != "good-access" {
		return nil, goToken.ErrTokenMalformed
	}
	return &goToken.Identity{
		Subject:   "alice@example.com",
		Role:      principal.RoleCandidate,
		ExpiresAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

func (f *fakeService) Health(context.Context) error { return f.healthErr }

func newTestHandler(svc Service) http.Handler {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "# metrics")
	})
	return NewHandler(svc, Options{Metrics: metrics})
}

func do(t *testing.T, h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginSuccess(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestHandler(svc), http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"wonderland"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "access-1", body["accessToken"])
	assert.Equal(t, "refresh-1", body["refreshToken"])
	assert.EqualValues(t, 3600, body["expiresIn"])
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	for _, err := range []error{goToken.ErrInvalidCredentials, goToken.ErrUserNotFound} {
		rec := do(t, newTestHandler(&fakeService{loginErr: err}), http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"nope"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
	}
}

func TestLoginRejectsBadBodies(t *testing.T) {
	h := newTestHandler(&fakeService{})
	cases := map[string]string{
		"not json":      `{`,
		"missing field": `{"email":"alice@example.com"}`,
		"unknown field": `{"email":"a","password":"b","admin":true}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/auth/login", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginBodyLimit(t *testing.T) {
	h := NewHandler(&fakeService{}, Options{MaxBodyBytes: 32})
	body := `{"email":"` + strings.Repeat("a", 64) + `","password":"b"}`
	rec := do(t, h, http.MethodPost, "/auth/login", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusOK},
		{"malformed", goToken.ErrTokenMalformed, http.StatusUnauthorized},
		{"expired", goToken.ErrTokenExpired, http.StatusUnauthorized},
		{"revoked", goToken.ErrTokenRevoked, http.StatusUnauthorized},
		{"user gone", goToken.ErrUserNotFound, http.StatusUnauthorized},
		{"store down", fmt.Errorf("%w: %w", goToken.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"issue", fmt.Errorf("%w: boom", goToken.ErrTokenIssue), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{refreshErr: tc.err}
			rec := do(t, newTestHandler(svc), http.MethodPost, "/auth/refresh", `{"refreshToken":"r-1"}`, nil)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, "r-1", svc.gotRefresh)
			if tc.want != http.StatusOK {
				assert.NotContains(t, rec.Body.String(), "dial tcp")
			}
		})
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	rec := do(t, newTestHandler(&fakeService{}), http.MethodPost, "/auth/refresh", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc)

	rec := do(t, h, http.MethodPost, "/auth/logout", `{"refreshToken":"r-1"}`,
		http.Header{"Authorization": {"Bearer a-1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]string{"a-1", "r-1"}, svc.gotLogout)

	rec = do(t, h, http.MethodPost, "/auth/logout", `{"refreshToken":"r-1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing bearer")

	rec = do(t, h, http.MethodPost, "/auth/logout", `{}`, http.Header{"Authorization": {"Bearer a-1"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing refresh token")

	svc.logoutErr = fmt.Errorf("%w: %w", goToken.ErrStoreUnavailable, errors.New("timeout"))
	rec = do(t, h, http.MethodPost, "/auth/logout", `{"refreshToken":"r-1"}`,
		http.Header{"Authorization": {"Bearer a-1"}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMeIsGuarded(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := do(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "", http.Header{"Authorization": {"Bearer forged"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", "", http.Header{"Authorization": {"Bearer good-access"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice@example.com", body["subject"])
	assert.Equal(t, "CANDIDATE", body["role"])
}

func TestHealthz(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc)

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.healthErr = goToken.ErrStoreUnavailable
	rec = do(t, h, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsAndMethodRouting(t *testing.T) {
	h := newTestHandler(&fakeService{})

	rec := do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# metrics", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
