package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Port              string `mapstructure:"PORT"`
	AppEnv            string `mapstructure:"APP_ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	StoreBackend      string `mapstructure:"STORE_BACKEND"`
	StorageDir        string `mapstructure:"STORAGE_DIR"`
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	RedisPrefix       string `mapstructure:"REDIS_PREFIX"`
	RemoteDSN         string `mapstructure:"REMOTE_DSN"`
	RemoteAutoMigrate bool   `mapstructure:"REMOTE_AUTO_MIGRATE"`
	AdminPassword     string `mapstructure:"ADMIN_PASSWORD"`
	SessionKey        string `mapstructure:"SESSION_KEY"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	CommissionPolicy  string `mapstructure:"COMMISSION_POLICY"`
	PublicBaseURL     string `mapstructure:"PUBLIC_BASE_URL"`
	TripayBaseURL     string `mapstructure:"TRIPAY_BASE_URL"`
}

var defaults = map[string]any{
	"PORT":                "8080",
	"APP_ENV":             "development",
	"LOG_LEVEL":           "info",
	"STORE_BACKEND":       "file",
	"STORAGE_DIR":         "data",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_PREFIX":        "digistore:",
	"REMOTE_DSN":          "",
	"REMOTE_AUTO_MIGRATE": false,
	"ADMIN_PASSWORD":      "admin123",
	"SESSION_KEY":         "dev-insecure",
	"JWT_SECRET":          "dev-jwt-secret",
	"COMMISSION_POLICY":   "checkout",
	"PUBLIC_BASE_URL":     "http://localhost:8080",
	"TRIPAY_BASE_URL":     "",
}

func (c *Config) IsProduction() bool {
	e := strings.ToLower(c.AppEnv)
	return e == "production" || e == "prod"
}

// Loader reads configuration from the environment and, when a file is given,
// from that file. Environment values win over the file.
type Loader struct {
	v    *viper.Viper
	file string

	mu  sync.RWMutex
	cfg *Config
}

func NewLoader(file string) *Loader {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
	}
	return &Loader{v: v, file: file}
}

func (l *Loader) Load() (*Config, error) {
	if l.file != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.file, err)
		}
	}
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch reloads the config file whenever it changes and hands the new value
// to fn. It does nothing without a config file.
func (l *Loader) Watch(fn func(prev, next *Config)) {
	if l.file == "" {
		return
	}
	l.v.OnConfigChange(func(fsnotify.Event) {
		prev := l.Current()
		cfg := &Config{}
		if err := l.v.Unmarshal(cfg); err != nil {
			log.Warn().Err(err).Msg("config reload ignored")
			return
		}
		log.Info().Str("file", l.file).Msg("config reloaded")
		l.mu.Lock()
		l.cfg = cfg
		l.mu.Unlock()
		fn(prev, cfg)
	})
	l.v.WatchConfig()
}
