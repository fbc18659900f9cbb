package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	CORS      CORSConfig      `yaml:"cors"`
	Redis     RedisConfig     `yaml:"redis"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	OTA       OTAConfig       `yaml:"ota"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Seed      SeedConfig      `yaml:"seed"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"` // development, staging, production
	LogLevel    string `yaml:"log_level"`
	UploadsDir  string `yaml:"uploads_dir"`
	FrontendURL string `yaml:"frontend_url"`
	BcryptCost  int    `yaml:"bcrypt_cost"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // mysql, postgres, sqlite
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	LogSQL          bool          `yaml:"log_sql"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FromName string `yaml:"from_name"`
}

// OTAConfig points at the channel manager that fans availability out to OTAs.
type OTAConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure"`
}

// SeedConfig is the bootstrap system admin created on an empty users table.
type SeedConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
			LogLevel:    "info",
			UploadsDir:  "uploads",
			FrontendURL: "http://localhost:3000",
			BcryptCost:  10,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "127.0.0.1",
			Port:            "3306",
			User:            "root",
			Name:            "hotel_db",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		JWT: JWTConfig{
			Secret: "dev-secret-change-me",
			Expiry: 12 * time.Hour,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		MQTT: MQTTConfig{ClientID: "hotel-pms"},
		SMTP: SMTPConfig{FromName: "Hotel PMS"},
		OTA:  OTAConfig{Timeout: 30 * time.Second},
		Telemetry: TelemetryConfig{
			ServiceName: "hotel-pms",
		},
		Seed: SeedConfig{
			AdminUsername: "admin",
			AdminPassword: "admin",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment (.env is loaded first if present). Environment wins.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("ENVIRONMENT", c.Server.Environment)
	c.Server.LogLevel = getEnv("LOG_LEVEL", c.Server.LogLevel)
	c.Server.UploadsDir = getEnv("UPLOADS_DIR", c.Server.UploadsDir)
	c.Server.FrontendURL = getEnv("FRONTEND_URL", c.Server.FrontendURL)
	c.Server.BcryptCost = getEnvAsInt("BCRYPT_COST", c.Server.BcryptCost)

	c.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", c.Database.Driver))
	c.Database.URL = getEnv("DATABASE_URL", getEnv("MYSQL_URL", c.Database.URL))
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASS", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)
	c.Database.LogSQL = getEnvAsBool("DB_LOG_SQL", c.Database.LogSQL)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.Expiry = getEnvAsDuration("JWT_EXPIRY", c.JWT.Expiry)

	c.CORS.AllowedOrigins = getEnvAsSlice("CORS_ORIGINS", c.CORS.AllowedOrigins)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnv("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnv("MQTT_PASSWORD", c.MQTT.Password)

	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getEnv("SMTP_PORT", c.SMTP.Port)
	c.SMTP.Username = getEnv("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.FromName = getEnv("SMTP_FROM_NAME", c.SMTP.FromName)

	c.OTA.Endpoint = getEnv("OTA_ENDPOINT", c.OTA.Endpoint)
	c.OTA.APIKey = getEnv("OTA_API_KEY", c.OTA.APIKey)
	c.OTA.Timeout = getEnvAsDuration("OTA_TIMEOUT", c.OTA.Timeout)

	c.Telemetry.ServiceName = getEnv("OTEL_SERVICE_NAME", c.Telemetry.ServiceName)
	c.Telemetry.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Telemetry.OTLPEndpoint)
	c.Telemetry.Insecure = getEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", c.Telemetry.Insecure)

	c.Seed.AdminUsername = getEnv("SEED_ADMIN_USERNAME", c.Seed.AdminUsername)
	c.Seed.AdminPassword = getEnv("SEED_ADMIN_PASSWORD", c.Seed.AdminPassword)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want mysql, postgres or sqlite)", c.Database.Driver)
	}
	if c.IsProduction() {
		if c.JWT.Secret == "" || c.JWT.Secret == defaults().JWT.Secret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Seed.AdminPassword == defaults().Seed.AdminPassword {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed in production")
		}
	}
	if c.JWT.Expiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
