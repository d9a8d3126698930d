package goToken

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/internal/flows"
	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/principal"
	"github.com/MrEthical07/goToken/revocation"
	"go.uber.org/zap"
)

// Engine runs the token lifecycle. Build it with [New]; it is safe for
// concurrent use until [Engine.Close].
type Engine struct {
	config      Config
	codec       *jwt.Codec
	issuer      *jwt.Issuer
	revocations revocation.Store
	ownsStore   bool
	principals  principal.Store
	flows       flows.Deps
	audit       *internalaudit.Dispatcher
	metrics     *Metrics
	log         *zap.Logger
	now         func() time.Time
	closed      atomic.Bool
}

const healthProbeToken = "gotoken-health-probe"

func (e *Engine) ready() bool {
	return e != nil && e.codec != nil && !e.closed.Load()
}

// Close drains the audit queue and, when the Engine created it, closes the
// revocation store. It is idempotent.
func (e *Engine) Close() error {
	if e == nil || e.closed.Swap(true) {
		return nil
	}
	e.audit.Close()
	if e.ownsStore && e.revocations != nil {
		return e.revocations.Close()
	}
	return nil
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// AuditDropped returns the number of audit events lost to a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Health probes the revocation store.
func (e *Engine) Health(ctx context.Context) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if _, err := e.revocations.IsRevoked(ctx, healthProbeToken); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Login verifies the credentials and returns a fresh pair. Unknown accounts,
// wrong passwords, and deactivated accounts all yield [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, identity, password string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}

	res := flows.RunLogin(ctx, identity, password, e.flows.Login)
	switch res.Failure {
	case flows.LoginFailureNone:
		e.metricInc(MetricLoginSuccess)
		e.emitAudit(ctx, AuditLoginSuccess, true, res.Principal.Identity, res.Pair.RefreshID, "")
		e.log.Debug("login", zap.String("subject", res.Principal.Identity), zap.String("role", res.Principal.Role.String()))
		return toTokenPair(res.Pair), nil
	case flows.LoginFailureCredentials:
		e.loginFailed(ctx, identity, "invalid_credentials", nil)
		return TokenPair{}, ErrInvalidCredentials
	case flows.LoginFailurePrincipalStore:
		e.loginFailed(ctx, identity, "principal_store", res.Err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
	default:
		e.loginFailed(ctx, identity, "issue_failed", res.Err)
		return TokenPair{}, fmt.Errorf("%w: %w", ErrTokenIssue, res.Err)
	}
}

func (e *Engine) loginFailed(ctx context.Context, identity, reason string, err error) {
	subject := principal.NormalizeIdentity(identity)
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, AuditLoginFailure, false, subject, "", reason)
	if err != nil {
		e.log.Error("login failed", zap.String("subject", subject), zap.String("reason", reason), zap.Error(err))
		return
	}
	e.log.Debug("login rejected", zap.String("subject", subject), zap.String("reason", reason))
}

// Refresh exchanges a refresh token for a new pair and revokes the presented
// token. A token that was already exchanged yields [ErrTokenRevoked]. When the
// old token cannot be revoked no pair is returned.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if !e.ready() {
		return TokenPair{}, ErrEngineNotReady
	}
	if refreshToken == "" {
		e.refreshFailed(ctx, flows.RefreshResult{}, "missing_token")
		return TokenPair{}, ErrTokenMissing
	}

	res := flows.RunRefresh(ctx, refreshToken, e.flows.Refresh)
	switch res.Failure {
	case flows.RefreshFailureNone:
		e.metricInc(MetricRefreshSuccess)
		e.emitAudit(ctx, AuditRefreshSuccess, true, res.Subject, res.Pair.RefreshID, "")
		e.log.Debug("refresh", zap.String("subject", res.Subject), zap.String("refresh_id", res.Pair.RefreshID))
		return toTokenPair(res.Pair), nil
	case flows.RefreshFailureDecode:
		e.refreshFailed(ctx, res, "malformed")
		return TokenPair{}, ErrTokenMalformed
	case flows.RefreshFailureExpired:
		e.refreshFailed(ctx, res, "expired")
		return TokenPair{}, ErrTokenExpired
	case flows.RefreshFailureWrongKind:
		e.refreshFailed(ctx, res, "wrong_kind")
		return TokenPair{}, ErrTokenKind
	case flows.RefreshFailureRevoked:
		e.metricInc(MetricRefreshFailure)
		e.metricInc(MetricRefreshReplay)
		e.emitAudit(ctx, AuditRefreshReplay, false, res.Subject, res.RefreshID, "revoked")
		e.log.Warn("refresh token replayed", zap.String("subject", res.Subject), zap.String("refresh_id", res.RefreshID))
		return TokenPair{}, ErrTokenRevoked
	case flows.RefreshFailurePrincipalGone:
		e.refreshFailed(ctx, res, "principal_gone")
		return TokenPair{}, ErrUserNotFound
	case flows.RefreshFailureRevocationCheck, flows.RefreshFailureRevoke:
		e.metricInc(MetricRevocationStoreError)
		e.refreshFailed(ctx, res, "revocation_store")
		return TokenPair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
	case flows.RefreshFailurePrincipalStore:
		e.refreshFailed(ctx, res, "principal_store")
		return TokenPair{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
	default:
		e.refreshFailed(ctx, res, "issue_failed")
		return TokenPair{}, fmt.Errorf("%w: %w", ErrTokenIssue, res.Err)
	}
}

func (e *Engine) refreshFailed(ctx context.Context, res flows.RefreshResult, reason string) {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, AuditRefreshFailure, false, res.Subject, res.RefreshID, reason)
	fields := []zap.Field{
		zap.String("subject", res.Subject),
		zap.String("refresh_id", res.RefreshID),
		zap.String("reason", reason),
	}
	switch res.Failure {
	case flows.RefreshFailureRevocationCheck, flows.RefreshFailureRevoke,
		flows.RefreshFailurePrincipalStore, flows.RefreshFailureIssue:
		e.log.Error("refresh failed", append(fields, zap.Error(res.Err))...)
	default:
		e.log.Debug("refresh rejected", fields...)
	}
}

// Logout revokes both tokens for the longer configured lifetime. The tokens are
// not decoded, so logging out twice, or with an expired pair, succeeds.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := flows.RunLogout(ctx, accessToken, refreshToken, e.flows.Logout)
	switch res.Failure {
	case flows.LogoutFailureNone:
		e.metricInc(MetricLogoutSuccess)
		e.emitAudit(ctx, AuditLogout, true, "", "", "")
		return nil
	case flows.LogoutFailureMissingToken:
		e.metricInc(MetricLogoutFailure)
		e.emitAudit(ctx, AuditLogoutFailure, false, "", "", "missing_token")
		return ErrTokenMissing
	default:
		e.metricInc(MetricLogoutFailure)
		e.metricInc(MetricRevocationStoreError)
		e.emitAudit(ctx, AuditLogoutFailure, false, "", "", "revocation_store")
		e.log.Error("logout failed", zap.String("reason", "revocation_store"), zap.Error(res.Err))
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
	}
}

// Authenticate validates an access token. An empty token yields
// [ErrTokenMissing] so that callers can tell anonymous requests apart from
// rejected ones. A revocation store failure rejects the token.
func (e *Engine) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	res := flows.RunAuthenticate(ctx, token, e.flows.Authenticate)
	e.metrics.Observe(MetricAuthenticateLatency, time.Since(start))

	switch res.Failure {
	case flows.AuthenticateFailureNone:
		e.metricInc(MetricAuthenticateSuccess)
		role, _ := principal.ParseRole(res.Claims.Role)
		return &Identity{
			Subject:   res.Claims.Subject,
			Role:      role,
			ExpiresAt: res.Claims.ExpiresAt,
		}, nil
	case flows.AuthenticateFailureMissing:
		e.metricInc(MetricAuthenticateAnonymous)
		return nil, ErrTokenMissing
	case flows.AuthenticateFailureRevocationCheck:
		e.metricInc(MetricAuthenticateRejected)
		e.metricInc(MetricRevocationStoreError)
		e.log.Error("revocation check failed", zap.Error(res.Err))
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, res.Err)
	case flows.AuthenticateFailureRevoked:
		e.metricInc(MetricAuthenticateRejected)
		return nil, ErrTokenRevoked
	case flows.AuthenticateFailureExpired:
		e.metricInc(MetricAuthenticateRejected)
		return nil, ErrTokenExpired
	case flows.AuthenticateFailureWrongKind:
		e.metricInc(MetricAuthenticateRejected)
		return nil, ErrTokenKind
	default:
		e.metricInc(MetricAuthenticateRejected)
		return nil, ErrTokenMalformed
	}
}

func toTokenPair(p jwt.Pair) TokenPair {
	return TokenPair{
		TokenType:        TokenTypeBearer,
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		ExpiresIn:        p.ExpiresIn,
		AccessExpiresAt:  p.AccessExpiresAt,
		RefreshExpiresAt: p.RefreshExpiresAt,
	}
}
