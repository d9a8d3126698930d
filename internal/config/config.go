package config

import (
	"time"

	goToken "github.com/MrEthical07/goToken"
	"github.com/MrEthical07/goToken/internal/obs"
	"github.com/MrEthical07/goToken/password"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type JWT struct {
	// SecretKey is base64 key material; Load decodes it into Key.
	SecretKey  string        `mapstructure:"secret_key"`
	Algorithm  string        `mapstructure:"algorithm"`
	Issuer     string        `mapstructure:"issuer"`
	Audience   string        `mapstructure:"audience"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Leeway     time.Duration `mapstructure:"leeway"`

	Key []byte `mapstructure:"-"`
}

type Revocation struct {
	Backend       string        `mapstructure:"backend"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

type Redis struct {
	Addrs       []string      `mapstructure:"addrs"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type DB struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type Metrics struct {
	Enabled           bool `mapstructure:"enabled"`
	LatencyHistograms bool `mapstructure:"latency_histograms"`
}

type Audit struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
	DropIfFull bool `mapstructure:"drop_if_full"`
}

type Config struct {
	App        App             `mapstructure:"app"`
	Server     Server          `mapstructure:"server"`
	Log        Log             `mapstructure:"log"`
	JWT        JWT             `mapstructure:"jwt"`
	Revocation Revocation      `mapstructure:"revocation"`
	Redis      Redis           `mapstructure:"redis"`
	DB         DB              `mapstructure:"db"`
	Password   password.Config `mapstructure:"password"`
	Metrics    Metrics         `mapstructure:"metrics"`
	Audit      Audit           `mapstructure:"audit"`
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }

const (
	ErrNoSecret     ErrConfig = "jwt.secret_key is required"
	ErrNoRedisAddrs ErrConfig = "redis.addrs is required for the redis revocation backend"
)

func (lc *Log) AsLoggerConfig(app App) obs.LogConfig {
	return obs.LogConfig{
		Level:   lc.Level,
		Pretty:  lc.Pretty,
		App:     app.Name,
		Env:     app.Env,
		Version: app.Version,
	}
}

// EngineConfig maps the file layout onto the Engine's typed configuration.
func (c *Config) EngineConfig() goToken.Config {
	cfg := goToken.DefaultConfig()
	cfg.JWT = goToken.JWTConfig{
		SigningKey: append([]byte(nil), c.JWT.Key...),
		Algorithm:  c.JWT.Algorithm,
		Issuer:     c.JWT.Issuer,
		Audience:   c.JWT.Audience,
		AccessTTL:  c.JWT.AccessTTL,
		RefreshTTL: c.JWT.RefreshTTL,
		Leeway:     c.JWT.Leeway,
	}
	cfg.Revocation = goToken.RevocationConfig{
		Backend:       goToken.RevocationBackend(c.Revocation.Backend),
		SweepInterval: c.Revocation.SweepInterval,
		RedisPrefix:   c.Revocation.RedisPrefix,
	}
	cfg.Audit = goToken.AuditConfig{
		Enabled:    c.Audit.Enabled,
		BufferSize: c.Audit.BufferSize,
		DropIfFull: c.Audit.DropIfFull,
	}
	cfg.Metrics = goToken.MetricsConfig{
		Enabled:                 c.Metrics.Enabled,
		EnableLatencyHistograms: c.Metrics.Enabled && c.Metrics.LatencyHistograms,
	}
	return cfg
}
