package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"CONFIG_FILE", "SERVER_PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_EXPIRY_HOURS", "CORS_ALLOWED_ORIGINS",
		"SERVICENOW_INSTANCE_URL", "SERVICENOW_TABLE_NAME", "SERVICENOW_USERNAME",
		"SERVICENOW_PASSWORD", "SERVICENOW_TIMEOUT_SECONDS",
		"SUSTAIN_SECONDS", "AMMONIA_MAX_PPM", "H2S_MAX_PPM",
		"MODERATE_MULTIPLIER", "STRONG_MULTIPLIER",
		"NOTIFY_URLS", "NOTIFY_TIMEOUT_SECONDS", "MODEL_PATH",
	}
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "campusfix",
		Password: "secret",
		Name:     "campusfix",
		SSLMode:  "disable",
	}
	dsn := db.GetDSN()

	expected := "host=localhost port=5432 user=campusfix password=secret dbname=campusfix sslmode=disable"
	if dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestTableAPIURL(t *testing.T) {
	sn := ServiceNowConfig{
		InstanceURL: "https://dev12345.service-now.com",
		TableName:   "u_repair_requests",
	}
	want := "https://dev12345.service-now.com/api/now/table/u_repair_requests"
	if got := sn.TableAPIURL(); got != want {
		t.Errorf("TableAPIURL() = %q, want %q", got, want)
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("TEST_CONFIG_VAR")
	if got := getEnv("TEST_CONFIG_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %q, want %q", got, "default")
	}

	os.Setenv("TEST_CONFIG_VAR", "custom")
	defer os.Unsetenv("TEST_CONFIG_VAR")
	if got := getEnv("TEST_CONFIG_VAR", "default"); got != "custom" {
		t.Errorf("getEnv() = %q, want %q", got, "custom")
	}
}

func TestGetIntEnv(t *testing.T) {
	t.Run("fallback when unset", func(t *testing.T) {
		os.Unsetenv("TEST_INT_VAR")
		got, err := getIntEnv("TEST_INT_VAR", 8080)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 8080 {
			t.Errorf("getIntEnv() = %d, want %d", got, 8080)
		}
	})

	t.Run("parses valid int", func(t *testing.T) {
		os.Setenv("TEST_INT_VAR", "9090")
		defer os.Unsetenv("TEST_INT_VAR")
		got, err := getIntEnv("TEST_INT_VAR", 8080)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 9090 {
			t.Errorf("getIntEnv() = %d, want %d", got, 9090)
		}
	})

	t.Run("error on invalid int", func(t *testing.T) {
		os.Setenv("TEST_INT_VAR", "not_int")
		defer os.Unsetenv("TEST_INT_VAR")
		_, err := getIntEnv("TEST_INT_VAR", 8080)
		if err == nil {
			t.Error("expected error for invalid int value")
		}
	})
}

func TestGetFloatEnv(t *testing.T) {
	os.Setenv("TEST_FLOAT_VAR", "2.75")
	defer os.Unsetenv("TEST_FLOAT_VAR")
	got, err := getFloatEnv("TEST_FLOAT_VAR", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2.75 {
		t.Errorf("getFloatEnv() = %v, want 2.75", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	// Point CONFIG_FILE at a missing path so a developer's config.yml
	// cannot leak into the test.
	os.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yml"))
	defer os.Unsetenv("CONFIG_FILE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	if cfg.JWT.ExpiryHours != 24 {
		t.Errorf("JWT.ExpiryHours = %d, want 24", cfg.JWT.ExpiryHours)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want 6379", cfg.Redis.Port)
	}
	if cfg.CORS.AllowedOrigins != "*" {
		t.Errorf("CORS.AllowedOrigins = %q, want %q", cfg.CORS.AllowedOrigins, "*")
	}
	if cfg.Alert.SustainSeconds != 60 {
		t.Errorf("Alert.SustainSeconds = %d, want 60", cfg.Alert.SustainSeconds)
	}
	if cfg.Alert.AmmoniaMaxPPM != 5.0 {
		t.Errorf("Alert.AmmoniaMaxPPM = %v, want 5.0", cfg.Alert.AmmoniaMaxPPM)
	}
	if cfg.Alert.H2SMaxPPM != 0.1 {
		t.Errorf("Alert.H2SMaxPPM = %v, want 0.1", cfg.Alert.H2SMaxPPM)
	}
	if cfg.ServiceNow.TimeoutSeconds != 30 {
		t.Errorf("ServiceNow.TimeoutSeconds = %d, want 30", cfg.ServiceNow.TimeoutSeconds)
	}
	if cfg.Model.Path != "model.json" {
		t.Errorf("Model.Path = %q, want model.json", cfg.Model.Path)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	content := strings.Join([]string{
		"server:",
		"  port: 9000",
		"servicenow:",
		"  instance_url: https://dev12345.service-now.com",
		"  username: api_user",
		"alert:",
		"  sustain_seconds: 120",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	os.Setenv("CONFIG_FILE", path)
	defer os.Unsetenv("CONFIG_FILE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.ServiceNow.InstanceURL != "https://dev12345.service-now.com" {
		t.Errorf("ServiceNow.InstanceURL = %q", cfg.ServiceNow.InstanceURL)
	}
	if cfg.Alert.SustainSeconds != 120 {
		t.Errorf("Alert.SustainSeconds = %d, want 120", cfg.Alert.SustainSeconds)
	}
	// Untouched sections keep their defaults
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.ServiceNow.TableName != "u_repair_requests" {
		t.Errorf("ServiceNow.TableName = %q", cfg.ServiceNow.TableName)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	content := "server:\n  port: 9000\nalert:\n  sustain_seconds: 120\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	os.Setenv("CONFIG_FILE", path)
	os.Setenv("SERVER_PORT", "3000")
	os.Setenv("SUSTAIN_SECONDS", "45")
	defer func() {
		os.Unsetenv("CONFIG_FILE")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("SUSTAIN_SECONDS")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000 (env wins over file)", cfg.Server.Port)
	}
	if cfg.Alert.SustainSeconds != 45 {
		t.Errorf("Alert.SustainSeconds = %d, want 45 (env wins over file)", cfg.Alert.SustainSeconds)
	}
}

func TestLoadConfigInvalidPort(t *testing.T) {
	clearConfigEnv(t)
	os.Setenv("SERVER_PORT", "invalid")
	defer os.Unsetenv("SERVER_PORT")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for invalid SERVER_PORT")
	}
}

func TestLoadConfigInvalidFloat(t *testing.T) {
	clearConfigEnv(t)
	os.Setenv("AMMONIA_MAX_PPM", "plenty")
	defer os.Unsetenv("AMMONIA_MAX_PPM")

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for invalid AMMONIA_MAX_PPM")
	}
}
