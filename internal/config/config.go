package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	SMTP         SMTPConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	App          AppConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Scheduler    SchedulerConfig
	Redis        RedisConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	FromName      string
	RatePerSecond float64
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Login, register and password reset
	AuthBurst    int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

type AppConfig struct {
	FrontendURL           string
	DefaultMemberPassword string
	ResetTokenTTL         time.Duration
	MaxUploadBytes        int64
	ResetCleanupInterval  time.Duration
}

// StorageConfig points at the S3 bucket holding uploaded documents.
// Endpoint is only set for S3-compatible stores.
type StorageConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Prefix          string
}

type NotificationConfig struct {
	Workers int
	Timeout time.Duration
}

type SchedulerConfig struct {
	Enabled      bool
	ReminderCron string
	Timezone     string
	// ReminderDueDay is the day of the month tuition is due, quoted in the
	// reminder email.
	ReminderDueDay int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "4000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("JWT_EXPIRY_HOURS", 24)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Dojo Bunkai Sistema")
	v.SetDefault("SMTP_RATE_PER_SECOND", 5)

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 20)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 1)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)

	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	v.SetDefault("CORS_MAX_AGE", 43200)

	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("DEFAULT_MEMBER_PASSWORD", "dojo2025")
	v.SetDefault("RESET_TOKEN_TTL", time.Hour)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("RESET_CLEANUP_INTERVAL", time.Hour)

	v.SetDefault("STORAGE_PREFIX", "renade")

	v.SetDefault("NOTIFY_WORKERS", 8)
	v.SetDefault("NOTIFY_TIMEOUT", 30*time.Second)

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("REMINDER_CRON", "0 9 6 * *")
	v.SetDefault("SCHEDULER_TIMEZONE", "America/Mexico_City")
	v.SetDefault("REMINDER_DUE_DAY", 11)
}

// Load reads envFile (when present) and the process environment. A missing
// file is not an error; environment variables always win.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile == "" {
		envFile = ".env"
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        v.GetString("SERVER_PORT"),
			Host:        v.GetString("SERVER_HOST"),
			Environment: v.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		SMTP: SMTPConfig{
			Host:          v.GetString("SMTP_HOST"),
			Port:          v.GetInt("SMTP_PORT"),
			User:          v.GetString("SMTP_USER"),
			Password:      v.GetString("SMTP_PASSWORD"),
			From:          v.GetString("SMTP_FROM"),
			FromName:      v.GetString("SMTP_FROM_NAME"),
			RatePerSecond: v.GetFloat64("SMTP_RATE_PER_SECOND"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   v.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   v.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   v.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		App: AppConfig{
			FrontendURL:           v.GetString("FRONTEND_URL"),
			DefaultMemberPassword: v.GetString("DEFAULT_MEMBER_PASSWORD"),
			ResetTokenTTL:         v.GetDuration("RESET_TOKEN_TTL"),
			MaxUploadBytes:        v.GetInt64("MAX_UPLOAD_BYTES"),
			ResetCleanupInterval:  v.GetDuration("RESET_CLEANUP_INTERVAL"),
		},
		Storage: StorageConfig{
			Bucket:          v.GetString("AWS_BUCKET_NAME"),
			Region:          v.GetString("AWS_BUCKET_REGION"),
			AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Endpoint:        v.GetString("AWS_ENDPOINT_URL"),
			Prefix:          v.GetString("STORAGE_PREFIX"),
		},
		Notification: NotificationConfig{
			Workers: v.GetInt("NOTIFY_WORKERS"),
			Timeout: v.GetDuration("NOTIFY_TIMEOUT"),
		},
		Scheduler: SchedulerConfig{
			Enabled:        v.GetBool("SCHEDULER_ENABLED"),
			ReminderCron:   v.GetString("REMINDER_CRON"),
			Timezone:       v.GetString("SCHEDULER_TIMEZONE"),
			ReminderDueDay: v.GetInt("REMINDER_DUE_DAY"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	return config, nil
}

// Validate reports the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return errors.New("database configuration is missing: set DB_HOST and DB_NAME")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is missing: set JWT_SECRET")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
