package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string `yaml:"port" env:"SERVER_PORT"`
		Mode            string `yaml:"mode" env:"SERVER_MODE"`
		BaseURL         string `yaml:"base_url" env:"SERVER_BASE_URL"`
		ReadTimeout     string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		AllowedOrigins  string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Email struct {
		Provider       string `yaml:"provider" env:"EMAIL_PROVIDER"`
		FromName       string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromAddress    string `yaml:"from_address" env:"EMAIL_FROM_ADDRESS"`
		SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort       int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername   string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword   string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SMTPUseTLS     bool   `yaml:"smtp_use_tls" env:"SMTP_USE_TLS"`
		SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		SendTimeout    string `yaml:"send_timeout" env:"EMAIL_SEND_TIMEOUT"`
	} `yaml:"email"`

	Events struct {
		Enabled      bool   `yaml:"enabled" env:"EVENTS_ENABLED"`
		Brokers      string `yaml:"brokers" env:"KAFKA_BROKERS"`
		Topic        string `yaml:"topic" env:"KAFKA_TOPIC"`
		ClientID     string `yaml:"client_id" env:"KAFKA_CLIENT_ID"`
		WriteTimeout string `yaml:"write_timeout" env:"KAFKA_WRITE_TIMEOUT"`
	} `yaml:"events"`

	Auth struct {
		OTPLength        int    `yaml:"otp_length" env:"AUTH_OTP_LENGTH"`
		OTPTTL           string `yaml:"otp_ttl" env:"AUTH_OTP_TTL"`
		OTPMaxAttempts   int    `yaml:"otp_max_attempts" env:"AUTH_OTP_MAX_ATTEMPTS"`
		ResetTokenTTL    string `yaml:"reset_token_ttl" env:"AUTH_RESET_TOKEN_TTL"`
		PasswordMinChars int    `yaml:"password_min_chars" env:"AUTH_PASSWORD_MIN_CHARS"`
	} `yaml:"auth"`

	Attendance struct {
		ShortageThreshold float64 `yaml:"shortage_threshold" env:"ATTENDANCE_SHORTAGE_THRESHOLD"`
	} `yaml:"attendance"`

	Seed struct {
		OnStartup      bool   `yaml:"on_startup" env:"SEED_ON_STARTUP"`
		AdminEmail     string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword  string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminFirstName string `yaml:"admin_first_name" env:"SEED_ADMIN_FIRST_NAME"`
		AdminLastName  string `yaml:"admin_last_name" env:"SEED_ADMIN_LAST_NAME"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional; variables already present in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.AllowedOrigins = "*"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "unicampus"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "unicampus.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Email.Provider = "log"
	config.Email.FromName = "UniCampus"
	config.Email.FromAddress = "no-reply@unicampus.app"
	config.Email.SMTPPort = 587
	config.Email.SMTPUseTLS = true
	config.Email.SendTimeout = "15s"

	config.Events.Enabled = false
	config.Events.Brokers = "localhost:9092"
	config.Events.Topic = "unicampus.events"
	config.Events.ClientID = "unicampus-api"
	config.Events.WriteTimeout = "5s"

	config.Auth.OTPLength = 6
	config.Auth.OTPTTL = "10m"
	config.Auth.OTPMaxAttempts = 5
	config.Auth.ResetTokenTTL = "30m"
	config.Auth.PasswordMinChars = 8

	config.Attendance.ShortageThreshold = 75

	config.Seed.OnStartup = true
	config.Seed.AdminEmail = "admin@unicampus.app"
	config.Seed.AdminPassword = "Admin123!"
	config.Seed.AdminFirstName = "System"
	config.Seed.AdminLastName = "Administrator"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration":  config.JWT.AccessTokenExpiration,
		"JWT refresh token expiration": config.JWT.RefreshTokenExpiration,
		"database connection lifetime": config.Database.ConnMaxLifetime,
		"OTP ttl":                      config.Auth.OTPTTL,
		"reset token ttl":              config.Auth.ResetTokenTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Email.Provider) {
	case "log", "smtp", "sendgrid":
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	if config.Email.Provider == "sendgrid" && config.Email.SendGridAPIKey == "" {
		return fmt.Errorf("sendgrid api key is required when provider is sendgrid")
	}

	if config.Auth.OTPLength < 4 || config.Auth.OTPLength > 10 {
		return fmt.Errorf("otp length must be between 4 and 10")
	}

	if config.Attendance.ShortageThreshold <= 0 || config.Attendance.ShortageThreshold > 100 {
		return fmt.Errorf("attendance shortage threshold must be in (0, 100]")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// KafkaBrokers splits the comma separated broker list
func (c *Config) KafkaBrokers() []string {
	return splitList(c.Events.Brokers)
}

// CORSOrigins splits the comma separated list of allowed origins
func (c *Config) CORSOrigins() []string {
	return splitList(c.Server.AllowedOrigins)
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
