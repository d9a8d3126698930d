package config

import (
	"fmt"
	"strings"

	"github.com/MrEthical07/goToken/jwt"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. AUTHD_JWT_SECRET_KEY.
const EnvPrefix = "AUTHD"

// Load reads the optional yaml file at path, applies AUTHD_* environment
// overrides, and decodes the signing key.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("app.name", "authd")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.algorithm", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.access_ttl", "1h")
	v.SetDefault("jwt.refresh_ttl", "2h")
	v.SetDefault("jwt.leeway", "0s")

	v.SetDefault("revocation.backend", "memory")
	v.SetDefault("revocation.sweep_interval", "5m")
	v.SetDefault("revocation.redis_prefix", "blacklisted_token:")

	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.username", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "3s")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")

	v.SetDefault("password.scheme", "argon2id")
	v.SetDefault("password.argon2.memory_kib", 64*1024)
	v.SetDefault("password.argon2.iterations", 3)
	v.SetDefault("password.argon2.threads", 2)
	v.SetDefault("password.argon2.salt_len", 16)
	v.SetDefault("password.argon2.key_len", 32)
	v.SetDefault("password.bcrypt_cost", 10)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.latency_histograms", true)

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.buffer_size", 1024)
	v.SetDefault("audit.drop_if_full", true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, ErrNoSecret
	}
	key, err := jwt.DecodeKey(cfg.JWT.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("jwt.secret_key: %w", err)
	}
	cfg.JWT.Key = key
	cfg.JWT.SecretKey = ""

	if cfg.Revocation.Backend == "redis" && len(cfg.Redis.Addrs) == 0 {
		return nil, ErrNoRedisAddrs
	}
	return &cfg, nil
}
