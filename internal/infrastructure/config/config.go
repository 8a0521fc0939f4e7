package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Port        string `env:"PORT, default=5000"`
	Env         string `env:"ENV, default=development"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`
	FrontendURL string `env:"FRONTEND_URL, default=http://localhost:3000"`
	BodyLimit   string `env:"BODY_LIMIT, default=10M"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Dashboard DashboardConfig
	HTTP      HTTPConfig
}

type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET, required"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	BcryptRounds int           `env:"BCRYPT_ROUNDS, default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URI"`
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=27017"`
	Database string `env:"DB_NAME, default=dost_logbook"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`

	MaxPoolSize            uint64        `env:"DB_MAX_POOL_SIZE, default=10"`
	ServerSelectionTimeout time.Duration `env:"DB_SERVER_SELECTION_TIMEOUT, default=5s"`
	SocketTimeout          time.Duration `env:"DB_SOCKET_TIMEOUT, default=45s"`
}

// RedisConfig is optional; an empty Addr selects the in-memory rate limit store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Max    int           `env:"RATE_LIMIT_MAX, default=100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW, default=15m"`
}

type DashboardConfig struct {
	UpcomingDays int `env:"DASHBOARD_UPCOMING_DAYS, default=7"`
	AlertDays    int `env:"DASHBOARD_ALERT_DAYS, default=3"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT, default=15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT, default=30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT, default=60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=10s"`

	// TrustedProxies lists the CIDR ranges whose X-Forwarded-For is believed.
	// Empty means the client address is the socket peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// Load reads a .env file when one exists and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Auth.BcryptRounds < bcrypt.MinCost || c.Auth.BcryptRounds > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_ROUNDS must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Auth.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Dashboard.UpcomingDays <= 0 || c.Dashboard.AlertDays <= 0 {
		errs = append(errs, errors.New("dashboard day windows must be positive"))
	}
	if _, err := c.HTTP.TrustedProxyNets(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ConnectionURI returns MONGODB_URI, or one assembled from the DB_* parts.
func (m MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   m.Host + ":" + m.Port,
		Path:   "/" + m.Database,
	}
	if m.User != "" {
		u.User = url.UserPassword(m.User, m.Password)
		u.RawQuery = "authSource=admin"
	}
	return u.String()
}

// TrustedProxyNets parses TRUSTED_PROXIES. A bare IP is taken as a single host.
func (h HTTPConfig) TrustedProxyNets() ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(h.TrustedProxies))
	for _, raw := range h.TrustedProxies {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", s)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid range %q", s)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
