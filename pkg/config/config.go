package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable consumed by the service.
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	// DefaultAdminSecret matches the well-known fallback used when no
	// override is configured or persisted.
	DefaultAdminSecret = "admin123"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Admin         AdminConfig
	Security      SecurityConfig
	Biometric     BiometricConfig
	Peer          PeerConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Security.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Peer.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AdminConfig struct {
	// Secret is the shared admin secret. The persisted override key, when
	// set through the admin settings surface, takes precedence at runtime.
	Secret string `envconfig:"STOREFRONT_ADMIN_SECRET" default:"admin123"`
}

// SecureScheme values accepted by SecurityConfig.Scheme.
const (
	SecretSchemeBase64   = "base64"
	SecretSchemeArgon2id = "argon2id"
)

type SecurityConfig struct {
	// Scheme selects the credential secret encoding. The demo default is the
	// reversible base64 encoding the storefront shipped with; argon2id is
	// available for anything beyond demo use.
	Scheme string `envconfig:"STOREFRONT_SECRET_SCHEME" default:"base64"`

	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

func (s SecurityConfig) validate() error {
	switch s.Scheme {
	case SecretSchemeBase64, SecretSchemeArgon2id:
		return nil
	}
	return fmt.Errorf("unknown secret scheme %q", s.Scheme)
}

type BiometricConfig struct {
	// CeremonyURL points at the external platform ceremony endpoint. Empty
	// disables biometric registration and login.
	CeremonyURL string        `envconfig:"STOREFRONT_BIOMETRIC_CEREMONY_URL"`
	Timeout     time.Duration `envconfig:"STOREFRONT_BIOMETRIC_TIMEOUT" default:"60s"`
}

type PeerConfig struct {
	// Enabled toggles the peer sync channel. When disabled the storefront
	// runs standalone and broadcasts are dropped.
	Enabled bool `envconfig:"STOREFRONT_PEER_ENABLED" default:"false"`
	// PeerID names this instance's inbound rendezvous channel.
	PeerID string `envconfig:"STOREFRONT_PEER_ID"`
	// RemotePeerID names the single remote peer's inbound channel.
	RemotePeerID string `envconfig:"STOREFRONT_PEER_REMOTE_ID"`
	// ChannelPrefix namespaces the rendezvous channels in Redis.
	ChannelPrefix string `envconfig:"STOREFRONT_PEER_CHANNEL_PREFIX" default:"storefront:peer"`
}

func (p PeerConfig) validate() error {
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.PeerID) == "" || strings.TrimSpace(p.RemotePeerID) == "" {
		return fmt.Errorf("peer sync requires both %s_PEER_ID and %s_PEER_REMOTE_ID", EnvPrefix, EnvPrefix)
	}
	if p.PeerID == p.RemotePeerID {
		return fmt.Errorf("peer id and remote peer id must differ")
	}
	return nil
}

// InboundChannel is the Redis channel this instance subscribes on.
func (p PeerConfig) InboundChannel() string {
	return p.ChannelPrefix + ":" + p.PeerID
}

// OutboundChannel is the Redis channel this instance publishes to.
func (p PeerConfig) OutboundChannel() string {
	return p.ChannelPrefix + ":" + p.RemotePeerID
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUserLimit     int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUserLimit  int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_USER_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STOREFRONT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool `envconfig:"STOREFRONT_SEED_CATALOG" default:"true"`
}
