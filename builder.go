package goToken

import (
	"errors"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/internal/flows"
	"github.com/MrEthical07/goToken/jwt"
	"github.com/MrEthical07/goToken/principal"
	"github.com/MrEthical07/goToken/revocation"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. It is single-use: a second Build fails.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	principals  principal.Store
	revocations revocation.Store
	auditSink   AuditSink
	logger      *zap.Logger
	now         func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the client for the redis revocation backend.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrincipalStore is required.
func (b *Builder) WithPrincipalStore(store principal.Store) *Builder {
	b.principals = store
	return b
}

// WithRevocationStore overrides the configured backend. The Engine does not
// close a store passed here.
func (b *Builder) WithRevocationStore(store revocation.Store) *Builder {
	b.revocations = store
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// WithClock replaces time.Now for token timestamps and revocation expiry.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.principals == nil {
		return nil, errors.New("principal store required")
	}

	log := b.logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("gotoken")

	now := b.now
	if now == nil {
		now = time.Now
	}

	codec, err := jwt.NewCodec(jwt.Config{
		Key:       cfg.JWT.SigningKey,
		Algorithm: jwt.Algorithm(strings.ToUpper(cfg.JWT.Algorithm)),
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Leeway:    cfg.JWT.Leeway,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	issuer, err := jwt.NewIssuer(codec, jwt.IssuerConfig{
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		return nil, err
	}

	store, owned, err := b.revocationStore(cfg.Revocation, now, log)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:      cfg,
		codec:       codec,
		issuer:      issuer,
		revocations: store,
		ownsStore:   owned,
		principals:  b.principals,
		metrics:     NewMetrics(cfg.Metrics),
		log:         log,
		now:         now,
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.flows = flows.Deps{
		Login: flows.LoginDeps{
			Principals: b.principals,
			Issuer:     issuer,
		},
		Refresh: flows.RefreshDeps{
			Codec:       codec,
			Issuer:      issuer,
			Revocations: store,
			Principals:  b.principals,
			Now:         now,
			Leeway:      cfg.JWT.Leeway,
		},
		Logout: flows.LogoutDeps{
			Revocations: store,
			AccessTTL:   cfg.JWT.AccessTTL,
			RefreshTTL:  cfg.JWT.RefreshTTL,
			Leeway:      cfg.JWT.Leeway,
		},
		Authenticate: flows.AuthenticateDeps{
			Codec:       codec,
			Revocations: store,
		},
	}

	log.Info("engine ready",
		zap.String("algorithm", string(codec.Algorithm())),
		zap.String("revocation_backend", backendName(cfg.Revocation, b.revocations != nil)),
		zap.Duration("access_ttl", cfg.JWT.AccessTTL),
		zap.Duration("refresh_ttl", cfg.JWT.RefreshTTL),
	)

	b.built = true
	return engine, nil
}

func (b *Builder) revocationStore(cfg RevocationConfig, now func() time.Time, log *zap.Logger) (revocation.Store, bool, error) {
	if b.revocations != nil {
		return b.revocations, false, nil
	}
	switch cfg.Backend {
	case RevocationRedis:
		if b.redis == nil {
			return nil, false, errors.New("redis revocation backend requires a redis client")
		}
		return revocation.NewRedisStore(b.redis, cfg.RedisPrefix), true, nil
	default:
		log.Warn("revocation entries are held in process memory and are lost on restart")
		return revocation.NewMemoryStore(
			revocation.WithSweepInterval(cfg.SweepInterval),
			revocation.WithClock(now),
		), true, nil
	}
}

func backendName(cfg RevocationConfig, custom bool) string {
	if custom {
		return "custom"
	}
	return string(cfg.Backend)
}
