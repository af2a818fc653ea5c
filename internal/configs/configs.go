package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	SyncPolicyLocalWins       = "local-wins"
	SyncPolicyRevertOnFailure = "revert-on-failure"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	AppURL                 string
	BackendURL             string
	DataDir                string
	DatabaseDSN            string
	Workers                int
	QueueSize              int
	RateLimit              int
	CacheBackend           string
	RedisAddr              string
	RedisPassword          string
	RedisDB                int
	CacheTTL               time.Duration
	PollInterval           time.Duration
	HTTPTimeout            time.Duration
	ShutdownTimeoutSeconds int
	SyncPolicy             string
	LogLevel               string
}

// Load reads the configuration from the environment and, when present,
// config.yaml in the data directory. Environment wins over the file.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	dataDir := v.GetString("DATA_DIR")
	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	setDefaults(v, dataDir)

	path := filepath.Join(dataDir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.Warnf("failed to read %s: %v", path, err)
		}
	}

	cfg := fromViper(v, dataDir)
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("APP_HOST", "127.0.0.1")
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("DATABASE_DSN", filepath.Join(dataDir, "planner.db"))
	v.SetDefault("TASK_WORKERS", 4)
	v.SetDefault("TASK_QUEUE_SIZE", 32)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("POLL_INTERVAL_SECONDS", 60)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 10)
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 20)
	v.SetDefault("PLANNER_SYNC_POLICY", SyncPolicyLocalWins)
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper, dataDir string) Config {
	appURL := fmt.Sprintf("%s:%s", v.GetString("APP_HOST"), v.GetString("APP_PORT"))

	backendURL := v.GetString("BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://" + appURL
	}

	return Config{
		AppURL:                 appURL,
		BackendURL:             backendURL,
		DataDir:                dataDir,
		DatabaseDSN:            v.GetString("DATABASE_DSN"),
		Workers:                v.GetInt("TASK_WORKERS"),
		QueueSize:              v.GetInt("TASK_QUEUE_SIZE"),
		RateLimit:              v.GetInt("RATE_LIMIT_PER_MINUTE"),
		CacheBackend:           v.GetString("CACHE_BACKEND"),
		RedisAddr:              fmt.Sprintf("%s:%s", v.GetString("REDIS_HOST"), v.GetString("REDIS_PORT")),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		CacheTTL:               time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		PollInterval:           time.Duration(v.GetInt("POLL_INTERVAL_SECONDS")) * time.Second,
		HTTPTimeout:            time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		ShutdownTimeoutSeconds: v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
		SyncPolicy:             v.GetString("PLANNER_SYNC_POLICY"),
		LogLevel:               v.GetString("LOG_LEVEL"),
	}
}

func (c Config) Validate() error {
	if c.AppURL == "" {
		return errors.New("APP_HOST/APP_PORT must not be empty (e.g. 127.0.0.1:8000)")
	}
	if c.Workers <= 0 {
		return errors.New("TASK_WORKERS must be greater than 0")
	}
	if c.QueueSize <= 0 {
		return errors.New("TASK_QUEUE_SIZE must be greater than 0")
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if c.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL_SECONDS must be greater than 0")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT_SECONDS must be greater than 0")
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return errors.Errorf("CACHE_BACKEND must be %q or %q", CacheBackendMemory, CacheBackendRedis)
	}
	switch c.SyncPolicy {
	case SyncPolicyLocalWins, SyncPolicyRevertOnFailure:
	default:
		return errors.Errorf("PLANNER_SYNC_POLICY must be %q or %q", SyncPolicyLocalWins, SyncPolicyRevertOnFailure)
	}
	return nil
}

func defaultDataDir() string {
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "RedminePlanner")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".redmine_planner"
	}
	return filepath.Join(home, ".redmine_planner")
}
