// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Engine   EngineConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// DSN returns the connection string for the configured driver
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// StoreConfig selects the registry backend: "memory" or "postgres"
type StoreConfig struct {
	Driver string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket used to archive reports
type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// ScoringConfig holds the composite score weights and risk thresholds
type ScoringConfig struct {
	CostWeight              uint64
	QualityWeight           uint64
	DeliveryWeight          uint64
	LowRiskReliability      uint8
	LowRiskQuality          uint8
	ModerateRiskReliability uint8
}

// Validate checks that the weights form a 100-point scale
func (s ScoringConfig) Validate() error {
	if sum := s.CostWeight + s.QualityWeight + s.DeliveryWeight; sum != 100 {
		return fmt.Errorf("scoring weights must sum to 100, got %d", sum)
	}
	return nil
}

type EngineConfig struct {
	Owners              []string
	Scoring             ScoringConfig
	SafetyStockPercent  uint64
	ConfidenceThreshold uint8
	ModelVersion        string
	TickInterval        time.Duration
	Genesis             time.Time
	CycleIntervalTicks  uint64
	TopSuppliers        int
	LiveAnalytics       bool
}

// DefaultScoringConfig returns the 40/35/25 policy weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		CostWeight:              40,
		QualityWeight:           35,
		DeliveryWeight:          25,
		LowRiskReliability:      80,
		LowRiskQuality:          85,
		ModerateRiskReliability: 60,
	}
}

// DefaultEngineConfig returns the engine policy without any owners
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Scoring:             DefaultScoringConfig(),
		SafetyStockPercent:  20,
		ConfidenceThreshold: 80,
		ModelVersion:        "v2.1-static",
		TickInterval:        10 * time.Minute,
		Genesis:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CycleIntervalTicks:  1008,
		TopSuppliers:        5,
		LiveAnalytics:       true,
	}
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance, loadErr = fromViper(viper.GetViper())
	})

	return instance, loadErr
}

// percentSetting reads a 0..100 setting; larger values are rejected
// rather than narrowed to uint8.
func percentSetting(v *viper.Viper, key string) (uint8, error) {
	raw := v.GetUint64(key)
	if raw > 100 {
		return 0, fmt.Errorf("%s=%d exceeds 100", key, raw)
	}
	return uint8(raw), nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	engine := DefaultEngineConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "supplychain")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)
	v.SetDefault("STORE_DRIVER", "memory")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_REPORT_TTL_SECONDS", 7*24*3600)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_REGION", "us-east-1")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "reports")
	v.SetDefault("ENGINE_OWNERS", "")
	v.SetDefault("ENGINE_COST_WEIGHT", engine.Scoring.CostWeight)
	v.SetDefault("ENGINE_QUALITY_WEIGHT", engine.Scoring.QualityWeight)
	v.SetDefault("ENGINE_DELIVERY_WEIGHT", engine.Scoring.DeliveryWeight)
	v.SetDefault("ENGINE_LOW_RISK_RELIABILITY", engine.Scoring.LowRiskReliability)
	v.SetDefault("ENGINE_LOW_RISK_QUALITY", engine.Scoring.LowRiskQuality)
	v.SetDefault("ENGINE_MODERATE_RISK_RELIABILITY", engine.Scoring.ModerateRiskReliability)
	v.SetDefault("ENGINE_SAFETY_STOCK_PERCENT", engine.SafetyStockPercent)
	v.SetDefault("ENGINE_CONFIDENCE_THRESHOLD", engine.ConfidenceThreshold)
	v.SetDefault("ENGINE_MODEL_VERSION", engine.ModelVersion)
	v.SetDefault("ENGINE_TICK_INTERVAL", engine.TickInterval)
	v.SetDefault("ENGINE_GENESIS", engine.Genesis.Format(time.RFC3339))
	v.SetDefault("ENGINE_TOP_SUPPLIERS", engine.TopSuppliers)
	v.SetDefault("ENGINE_LIVE_ANALYTICS", engine.LiveAnalytics)

	// Read from environment variables
	v.AutomaticEnv()

	engine.Owners = splitList(v.GetString("ENGINE_OWNERS"))
	engine.Scoring.CostWeight = v.GetUint64("ENGINE_COST_WEIGHT")
	engine.Scoring.QualityWeight = v.GetUint64("ENGINE_QUALITY_WEIGHT")
	engine.Scoring.DeliveryWeight = v.GetUint64("ENGINE_DELIVERY_WEIGHT")
	engine.SafetyStockPercent = v.GetUint64("ENGINE_SAFETY_STOCK_PERCENT")
	percents := []struct {
		key  string
		dest *uint8
	}{
		{"ENGINE_CONFIDENCE_THRESHOLD", &engine.ConfidenceThreshold},
		{"ENGINE_LOW_RISK_RELIABILITY", &engine.Scoring.LowRiskReliability},
		{"ENGINE_LOW_RISK_QUALITY", &engine.Scoring.LowRiskQuality},
		{"ENGINE_MODERATE_RISK_RELIABILITY", &engine.Scoring.ModerateRiskReliability},
	}
	for _, p := range percents {
		value, err := percentSetting(v, p.key)
		if err != nil {
			return nil, err
		}
		*p.dest = value
	}
	engine.ModelVersion = v.GetString("ENGINE_MODEL_VERSION")
	engine.TickInterval = v.GetDuration("ENGINE_TICK_INTERVAL")
	engine.TopSuppliers = v.GetInt("ENGINE_TOP_SUPPLIERS")
	engine.LiveAnalytics = v.GetBool("ENGINE_LIVE_ANALYTICS")
	if genesis, err := time.Parse(time.RFC3339, v.GetString("ENGINE_GENESIS")); err == nil {
		engine.Genesis = genesis
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONCURRENT_TX"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ReportTTLSeconds: v.GetInt("CACHE_REPORT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Engine: engine,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
