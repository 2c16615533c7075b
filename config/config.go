package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	CORS       CORSConfig       `yaml:"cors"`
	ServiceNow ServiceNowConfig `yaml:"servicenow"`
	Alert      AlertConfig      `yaml:"alert"`
	Notify     NotifyConfig     `yaml:"notify"`
	Model      ModelConfig      `yaml:"model"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpiryHours int    `yaml:"expiry_hours"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

type ServiceNowConfig struct {
	InstanceURL    string `yaml:"instance_url"`
	TableName      string `yaml:"table_name"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TableAPIURL returns the full ServiceNow table API endpoint.
func (s ServiceNowConfig) TableAPIURL() string {
	return fmt.Sprintf("%s/api/now/table/%s", s.InstanceURL, s.TableName)
}

type AlertConfig struct {
	SustainSeconds     int     `yaml:"sustain_seconds"`
	AmmoniaMaxPPM      float64 `yaml:"ammonia_max_ppm"`
	H2SMaxPPM          float64 `yaml:"h2s_max_ppm"`
	ModerateMultiplier float64 `yaml:"moderate_multiplier"`
	StrongMultiplier   float64 `yaml:"strong_multiplier"`
}

type NotifyConfig struct {
	// Shoutrrr service URLs, comma separated (e.g. twilio + smtp).
	URLs           string `yaml:"urls"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ModelConfig struct {
	Path string `yaml:"path"`
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// LoadConfig builds the configuration in three layers: built-in defaults,
// an optional YAML file (CONFIG_FILE, default ./config.yml), and finally
// environment variables, which win over the file.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	path := getEnv("CONFIG_FILE", "config.yml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "campusfix",
			Password: "campusfix_dev_password",
			Name:     "campusfix",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			Secret:      "dev-secret-change-me",
			ExpiryHours: 24,
		},
		CORS: CORSConfig{AllowedOrigins: "*"},
		ServiceNow: ServiceNowConfig{
			TableName:      "u_repair_requests",
			TimeoutSeconds: 30,
		},
		Alert: AlertConfig{
			SustainSeconds:     60,
			AmmoniaMaxPPM:      5.0,
			H2SMaxPPM:          0.1,
			ModerateMultiplier: 1.5,
			StrongMultiplier:   2.0,
		},
		Notify: NotifyConfig{TimeoutSeconds: 10},
		Model:  ModelConfig{Path: "model.json"},
	}
}

func applyEnv(cfg *Config) error {
	var err error

	if cfg.Server.Port, err = getIntEnv("SERVER_PORT", cfg.Server.Port); err != nil {
		return fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	if cfg.Database.Port, err = getIntEnv("DB_PORT", cfg.Database.Port); err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	if cfg.Redis.Port, err = getIntEnv("REDIS_PORT", cfg.Redis.Port); err != nil {
		return fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = getIntEnv("REDIS_DB", cfg.Redis.DB); err != nil {
		return fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	if cfg.JWT.ExpiryHours, err = getIntEnv("JWT_EXPIRY_HOURS", cfg.JWT.ExpiryHours); err != nil {
		return fmt.Errorf("invalid JWT_EXPIRY_HOURS: %w", err)
	}

	cfg.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.ServiceNow.InstanceURL = getEnv("SERVICENOW_INSTANCE_URL", cfg.ServiceNow.InstanceURL)
	cfg.ServiceNow.TableName = getEnv("SERVICENOW_TABLE_NAME", cfg.ServiceNow.TableName)
	cfg.ServiceNow.Username = getEnv("SERVICENOW_USERNAME", cfg.ServiceNow.Username)
	cfg.ServiceNow.Password = getEnv("SERVICENOW_PASSWORD", cfg.ServiceNow.Password)
	if cfg.ServiceNow.TimeoutSeconds, err = getIntEnv("SERVICENOW_TIMEOUT_SECONDS", cfg.ServiceNow.TimeoutSeconds); err != nil {
		return fmt.Errorf("invalid SERVICENOW_TIMEOUT_SECONDS: %w", err)
	}

	if cfg.Alert.SustainSeconds, err = getIntEnv("SUSTAIN_SECONDS", cfg.Alert.SustainSeconds); err != nil {
		return fmt.Errorf("invalid SUSTAIN_SECONDS: %w", err)
	}
	if cfg.Alert.AmmoniaMaxPPM, err = getFloatEnv("AMMONIA_MAX_PPM", cfg.Alert.AmmoniaMaxPPM); err != nil {
		return fmt.Errorf("invalid AMMONIA_MAX_PPM: %w", err)
	}
	if cfg.Alert.H2SMaxPPM, err = getFloatEnv("H2S_MAX_PPM", cfg.Alert.H2SMaxPPM); err != nil {
		return fmt.Errorf("invalid H2S_MAX_PPM: %w", err)
	}
	if cfg.Alert.ModerateMultiplier, err = getFloatEnv("MODERATE_MULTIPLIER", cfg.Alert.ModerateMultiplier); err != nil {
		return fmt.Errorf("invalid MODERATE_MULTIPLIER: %w", err)
	}
	if cfg.Alert.StrongMultiplier, err = getFloatEnv("STRONG_MULTIPLIER", cfg.Alert.StrongMultiplier); err != nil {
		return fmt.Errorf("invalid STRONG_MULTIPLIER: %w", err)
	}

	cfg.Notify.URLs = getEnv("NOTIFY_URLS", cfg.Notify.URLs)
	if cfg.Notify.TimeoutSeconds, err = getIntEnv("NOTIFY_TIMEOUT_SECONDS", cfg.Notify.TimeoutSeconds); err != nil {
		return fmt.Errorf("invalid NOTIFY_TIMEOUT_SECONDS: %w", err)
	}

	cfg.Model.Path = getEnv("MODEL_PATH", cfg.Model.Path)

	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getFloatEnv(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
