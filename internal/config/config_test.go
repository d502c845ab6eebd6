package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка брокеров из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")

	got := parseCSVEnv("KAFKA_BROKERS")
	want := []string{"kafka-1:9092", "kafka-2:9092"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestLoadMemoryDriver проверяет загрузку конфигурации без базы данных.
func TestLoadMemoryDriver(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Store.Driver != StoreDriverMemory {
		t.Fatalf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

// TestLoadRejectsUnknownDriver проверяет отказ при неизвестном драйвере.
func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("STORE_DRIVER", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}
