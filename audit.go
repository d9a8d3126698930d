package goToken

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"go.uber.org/zap"
)

// AuditEvent is one auditable outcome. Token strings are never part of it.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events on the dispatcher goroutine.
type AuditSink = internalaudit.Sink

type (
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	ZapSink        = internalaudit.ZapSink
)

func NewChannelSink(buffer int) *ChannelSink { return internalaudit.NewChannelSink(buffer) }

func NewJSONWriterSink(w io.Writer) *JSONWriterSink { return internalaudit.NewJSONWriterSink(w) }

// NewZapSink writes events through a child logger named "audit".
func NewZapSink(log *zap.Logger) *ZapSink { return internalaudit.NewZapSink(log) }

const (
	AuditLoginSuccess   = "login_success"
	AuditLoginFailure   = "login_failure"
	AuditRefreshSuccess = "refresh_success"
	AuditRefreshFailure = "refresh_failure"
	// AuditRefreshReplay is emitted when an already consumed refresh token is presented.
	AuditRefreshReplay  = "refresh_replay"
	AuditLogout         = "logout"
	AuditLogoutFailure  = "logout_failure"
)

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, subject, refreshID, reason string) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditEvent{
		Timestamp:  e.now().UTC(),
		Type:       eventType,
		Subject:    subject,
		RefreshID:  refreshID,
		RemoteAddr: remoteAddrFromContext(ctx),
		Success:    success,
		Reason:     reason,
	})
}
