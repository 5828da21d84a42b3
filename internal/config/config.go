package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the hostel booking service.
type ServiceConfig struct {
	Port    string
	AppEnv  string
	DB      DatabaseConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Payment PaymentConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds Kafka broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// PaymentConfig holds settings for the payment status collaborator.
type PaymentConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Load reads configuration from environment variables, optionally seeded from
// a .env file in the working directory.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	// Missing .env is fine; env vars alone are enough in deployed environments.
	_ = v.ReadInConfig()

	setDefaults(v)

	return &ServiceConfig{
		Port:   ":" + v.GetString("BOOKING_SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DB: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
		},
		Payment: PaymentConfig{
			BaseURL:  v.GetString("PAYMENT_SERVICE_URL"),
			Timeout:  v.GetDuration("PAYMENT_TIMEOUT"),
			CacheTTL: v.GetDuration("PAYMENT_CACHE_TTL"),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("BOOKING_SERVICE_PORT", "8083")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hostel_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "hostelhub.")
	v.SetDefault("JWT_ACCESS_EXPIRY", 15*time.Minute)
	v.SetDefault("JWT_REFRESH_EXPIRY", 7*24*time.Hour)
	v.SetDefault("PAYMENT_SERVICE_URL", "http://localhost:8084")
	v.SetDefault("PAYMENT_TIMEOUT", 5*time.Second)
	v.SetDefault("PAYMENT_CACHE_TTL", 30*time.Second)
}
