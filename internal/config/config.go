package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/churnboard/internal/batch"
	"github.com/yungbote/churnboard/internal/platform/envutil"
	"github.com/yungbote/churnboard/internal/platform/logger"
	"github.com/yungbote/churnboard/internal/predict"
)

const defaultPath = "config/config.yaml"

// Duration accepts "30s" style strings or a bare number of seconds in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(raw); err == nil {
		*d = Duration(v)
		return nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration %q", raw)
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes    int64    `yaml:"max_upload_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
	SecureCookies     bool     `yaml:"secure_cookies"`
}

type BackendConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Timeout      Duration `yaml:"timeout"`
	MaxRetries   int      `yaml:"max_retries"`
	RetryBackoff Duration `yaml:"retry_backoff"`
}

type SessionConfig struct {
	IdleTTL       Duration `yaml:"idle_ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
	PreviewSize   int      `yaml:"preview_size"`
}

type RealtimeConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisChannel  string `yaml:"redis_channel"`
	QueueSize     int    `yaml:"queue_size"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	Version     string `yaml:"version"`
}

type Config struct {
	Env       string          `yaml:"env"`
	HTTP      HTTPConfig      `yaml:"http"`
	Backend   BackendConfig   `yaml:"backend"`
	Sessions  SessionConfig   `yaml:"sessions"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

func Default() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration(10 * time.Second),
			ShutdownTimeout:   Duration(15 * time.Second),
			MaxUploadBytes:    16 << 20,
			CORSOrigins:       []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		},
		Backend: BackendConfig{
			BaseURL:      predict.DefaultBaseURL,
			Timeout:      Duration(30 * time.Second),
			MaxRetries:   1,
			RetryBackoff: Duration(250 * time.Millisecond),
		},
		Sessions: SessionConfig{
			IdleTTL:       Duration(30 * time.Minute),
			SweepInterval: Duration(time.Minute),
			PreviewSize:   batch.PreviewSize,
		},
		Realtime: RealtimeConfig{
			RedisChannel: "churnboard:lifecycle",
			QueueSize:    256,
		},
		Telemetry: TelemetryConfig{ServiceName: "churnboard"},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CHURNBOARD_CONFIG_PATH (or config/config.yaml when present), then
// environment overrides.
func Load(log *logger.Logger) (Config, error) {
	cfg := Default()

	path := envutil.String("CHURNBOARD_CONFIG_PATH", "")
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}
	if err := loadFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else if log != nil {
		log.Info("loaded config file", "path", path)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + port
	}
	cfg.HTTP.Addr = envutil.String("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.MaxUploadBytes = int64(envutil.Int("HTTP_MAX_UPLOAD_BYTES", int(cfg.HTTP.MaxUploadBytes)))
	cfg.HTTP.SecureCookies = envutil.Bool("HTTP_SECURE_COOKIES", cfg.HTTP.SecureCookies)
	if origins := envutil.String("CORS_ALLOW_ORIGINS", ""); origins != "" {
		cfg.HTTP.CORSOrigins = splitList(origins)
	}

	cfg.Backend.BaseURL = envutil.String("CHURN_API_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.Timeout = Duration(envutil.Duration("CHURN_API_TIMEOUT", cfg.Backend.Timeout.Std()))
	cfg.Backend.MaxRetries = envutil.Int("CHURN_API_MAX_RETRIES", cfg.Backend.MaxRetries)
	cfg.Backend.RetryBackoff = Duration(envutil.Duration("CHURN_API_RETRY_BACKOFF", cfg.Backend.RetryBackoff.Std()))

	cfg.Sessions.IdleTTL = Duration(envutil.Duration("SESSION_IDLE_TTL", cfg.Sessions.IdleTTL.Std()))
	cfg.Sessions.SweepInterval = Duration(envutil.Duration("SESSION_SWEEP_INTERVAL", cfg.Sessions.SweepInterval.Std()))

	cfg.Realtime.RedisAddr = envutil.String("REDIS_ADDR", cfg.Realtime.RedisAddr)
	cfg.Realtime.RedisPassword = envutil.String("REDIS_PASSWORD", cfg.Realtime.RedisPassword)
	cfg.Realtime.RedisDB = envutil.Int("REDIS_DB", cfg.Realtime.RedisDB)
	cfg.Realtime.RedisChannel = envutil.String("REDIS_CHANNEL", cfg.Realtime.RedisChannel)

	cfg.Telemetry.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
	cfg.Telemetry.Version = envutil.String("APP_VERSION", cfg.Telemetry.Version)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("http.max_upload_bytes must be positive"))
	}
	if u, err := url.Parse(strings.TrimSpace(c.Backend.BaseURL)); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL))
	}
	if c.Backend.Timeout <= 0 {
		errs = append(errs, errors.New("backend.timeout must be positive"))
	}
	if c.Backend.MaxRetries < 0 {
		errs = append(errs, errors.New("backend.max_retries must not be negative"))
	}
	if c.Sessions.IdleTTL <= 0 || c.Sessions.SweepInterval <= 0 {
		errs = append(errs, errors.New("sessions.idle_ttl and sessions.sweep_interval must be positive"))
	}
	if c.Sessions.PreviewSize <= 0 {
		errs = append(errs, errors.New("sessions.preview_size must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}
