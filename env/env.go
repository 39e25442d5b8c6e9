package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type convertible interface {
	~[]byte | ~string
}

// Config is loaded once in main and passed to whatever needs it.
type Config struct {
	DatabaseURL    string
	DBMaxOpenConns int

	SecretKey          []byte
	Algorithm          string
	AccessTokenExpire  time.Duration
	LoginRateLimit     int
	CORSAllowedOrigins []string

	AppPort         string
	ShutdownTimeout time.Duration
	ServerID        string

	LogLevel  string
	LogFormat string

	NSQDTCPAddr    string
	NSQLookupdAddr string
	EventsTopic    string
	PushEnabled    bool
}

var ErrMissing = errors.New("missing required variable")

type loader struct {
	errs []error
}

func initEnv[T convertible](l *loader, dst *T, key string) {
	v := os.Getenv(key)
	if v == "" {
		l.errs = append(l.errs, fmt.Errorf("%w: %s", ErrMissing, key))
		return
	}
	*dst = T(v)
}

func initEnvDefault[T convertible](dst *T, key, def string) {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	*dst = T(v)
}

func (l *loader) int(dst *int, key string, def int) {
	v := os.Getenv(key)
	if v == "" {
		*dst = def
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (l *loader) bool(dst *bool, key string, def bool) {
	v := os.Getenv(key)
	if v == "" {
		*dst = def
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}

func (l *loader) duration(dst *time.Duration, key string, def time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		*dst = def
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

// Load reads .env files (when present) and the process environment.
// Variables already set in the environment win over .env entries.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("env: load %s: %w", f, err)
		}
	}

	var (
		cfg     Config
		l       loader
		minutes int
		origins string
	)
	initEnv(&l, &cfg.DatabaseURL, "DATABASE_URL")
	initEnv(&l, &cfg.SecretKey, "SECRET_KEY")
	initEnvDefault(&cfg.Algorithm, "ALGORITHM", "HS256")
	l.int(&minutes, "ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	cfg.AccessTokenExpire = time.Duration(minutes) * time.Minute
	l.int(&cfg.DBMaxOpenConns, "DB_MAX_OPEN_CONNS", 10)
	l.int(&cfg.LoginRateLimit, "LOGIN_RATE_LIMIT", 10)
	initEnvDefault(&origins, "CORS_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	initEnvDefault(&cfg.AppPort, "APP_PORT", "8000")
	l.duration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT", 10*time.Second)
	host, _ := os.Hostname()
	if host == "" {
		host = "intersection"
	}
	initEnvDefault(&cfg.ServerID, "SERVER_ID", host)
	initEnvDefault(&cfg.LogLevel, "LOG_LEVEL", "info")
	initEnvDefault(&cfg.LogFormat, "LOG_FORMAT", "json")
	initEnvDefault(&cfg.NSQDTCPAddr, "NSQD_TCP_ADDR", "")
	initEnvDefault(&cfg.NSQLookupdAddr, "NSQLOOKUPD_ADDR", "")
	initEnvDefault(&cfg.EventsTopic, "EVENTS_TOPIC", "feed")
	l.bool(&cfg.PushEnabled, "PUSH_ENABLED", false)

	if minutes <= 0 && len(l.errs) == 0 {
		l.errs = append(l.errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if err := errors.Join(l.errs...); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return ":" + c.AppPort
}
