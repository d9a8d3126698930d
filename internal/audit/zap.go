package audit

import (
	"context"

	"go.uber.org/zap"
)

// ZapSink writes events as structured log entries. Failures log at warn level.
type ZapSink struct {
	log *zap.Logger
}

// NewZapSink names the logger "audit".
func NewZapSink(log *zap.Logger) *ZapSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZapSink{log: log.Named("audit")}
}

func (s *ZapSink) Emit(_ context.Context, event Event) {
	fields := make([]zap.Field, 0, 6+len(event.Metadata))
	fields = append(fields,
		zap.Time("at", event.Timestamp),
		zap.Bool("success", event.Success),
	)
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.RefreshID != "" {
		fields = append(fields, zap.String("refresh_id", event.RefreshID))
	}
	if event.RemoteAddr != "" {
		fields = append(fields, zap.String("remote_addr", event.RemoteAddr))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}

	if event.Success {
		s.log.Info(event.Type, fields...)
		return
	}
	s.log.Warn(event.Type, fields...)
}
