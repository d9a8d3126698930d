package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Service is the slice of *goToken.Engine the handlers need.
type Service interface {
	Login(ctx context.Context, identity, password string) (goToken.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (goToken.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Authenticate(ctx context.Context, token string) (*goToken.Identity, error)
	Health(ctx context.Context) error
}

type Options struct {
	Logger *zap.Logger
	// Metrics serves /metrics. Defaults to promhttp.Handler().
	Metrics http.Handler
	// MaxBodyBytes caps request bodies. Defaults to 16 KiB.
	MaxBodyBytes  int64
	HealthTimeout time.Duration
}

type handler struct {
	svc  Service
	log  *zap.Logger
	opts Options
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type meResponse struct {
	Subject   string    `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewHandler routes the auth endpoints, /auth/me, /healthz, and /metrics.
func NewHandler(svc Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 16 << 10
	}
	if opts.HealthTimeout <= 0 {
		opts.HealthTimeout = 500 * time.Millisecond
	}
	h := &handler{svc: svc, log: opts.Logger.Named("http"), opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.HandleFunc("POST /auth/logout", h.logout)
	mux.Handle("GET /auth/me", middleware.Guard(svc, middleware.WithLogger(h.log))(http.HandlerFunc(h.me)))
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("GET /metrics", opts.Metrics)
	return mux
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	pair, err := h.svc.Login(requestContext(r), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.svc.Refresh(requestContext(r), req.RefreshToken)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	access, ok := middleware.BearerToken(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bearer access token is required")
		return
	}
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := h.svc.Logout(requestContext(r), access, req.RefreshToken); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, meResponse{
		Subject:   id.Subject,
		Role:      id.Role.String(),
		ExpiresAt: id.ExpiresAt.UTC(),
	})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.HealthTimeout)
	defer cancel()
	if err := h.svc.Health(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "unhealthy")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// fail logs the precise error and answers with the coarse one.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	public := goToken.PublicError(err)
	switch {
	case errors.Is(public, goToken.ErrUnauthorized):
		h.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.String("reason", err.Error()))
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(public, goToken.ErrTokenMissing):
		writeError(w, http.StatusBadRequest, "token is required")
	case errors.Is(public, goToken.ErrStoreUnavailable):
		h.log.Error("backing store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requestContext(r *http.Request) context.Context {
	return goToken.WithRemoteAddr(r.Context(), r.RemoteAddr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
