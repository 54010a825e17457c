package config

import (
	"os"
	"strings"
	"testing"
)

func TestGetDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "exofinder",
		Password: "secret",
		Name:     "exofinder",
		SSLMode:  "disable",
	}
	dsn := db.GetDSN()

	expected := "host=localhost port=5432 user=exofinder password=secret dbname=exofinder sslmode=disable"
	if dsn != expected {
		t.Errorf("GetDSN() = %q, want %q", dsn, expected)
	}
}

func TestGetDSNCustomValues(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.example.com",
		Port:     5433,
		User:     "admin",
		Password: "p@ss",
		Name:     "mydb",
		SSLMode:  "require",
	}
	dsn := db.GetDSN()

	if !strings.Contains(dsn, "host=db.example.com") {
		t.Errorf("DSN missing host, got: %s", dsn)
	}
	if !strings.Contains(dsn, "port=5433") {
		t.Errorf("DSN missing port, got: %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Errorf("DSN missing sslmode, got: %s", dsn)
	}
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "cache.local", Port: 6380}
	if got := r.Addr(); got != "cache.local:6380" {
		t.Errorf("Addr() = %q, want %q", got, "cache.local:6380")
	}
}

func TestArtifactPaths(t *testing.T) {
	m := ModelConfig{ArtifactDir: "/opt/models"}

	if got := m.FullModelPath(); got != "/opt/models/model_pro.json" {
		t.Errorf("FullModelPath() = %q", got)
	}
	if got := m.FullScalerPath(); got != "/opt/models/scaler_pro.json" {
		t.Errorf("FullScalerPath() = %q", got)
	}
	if got := m.ReducedModelPath(); got != "/opt/models/model_noob.json" {
		t.Errorf("ReducedModelPath() = %q", got)
	}
	if got := m.ReducedScalerPath(); got != "/opt/models/scaler_noob.json" {
		t.Errorf("ReducedScalerPath() = %q", got)
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

	t.Run("parses set value", func(t *testing.T) {
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

	t.Run("error on garbage", func(t *testing.T) {
		os.Setenv("TEST_INT_VAR", "not-a-number")
		defer os.Unsetenv("TEST_INT_VAR")
		if _, err := getIntEnv("TEST_INT_VAR", 8080); err == nil {
			t.Error("expected error for non-numeric value")
		}
	})
}

func TestGetFloatEnv(t *testing.T) {
	t.Run("fallback when unset", func(t *testing.T) {
		os.Unsetenv("TEST_FLOAT_VAR")
		got, err := getFloatEnv("TEST_FLOAT_VAR", 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.5 {
			t.Errorf("getFloatEnv() = %v, want %v", got, 0.5)
		}
	})

	t.Run("parses set value", func(t *testing.T) {
		os.Setenv("TEST_FLOAT_VAR", "0.65")
		defer os.Unsetenv("TEST_FLOAT_VAR")
		got, err := getFloatEnv("TEST_FLOAT_VAR", 0.5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0.65 {
			t.Errorf("getFloatEnv() = %v, want %v", got, 0.65)
		}
	})
}

func TestLoadConfigThresholdBounds(t *testing.T) {
	os.Setenv("MODEL_THRESHOLD", "1.5")
	defer os.Unsetenv("MODEL_THRESHOLD")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}
