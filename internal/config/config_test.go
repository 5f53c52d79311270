package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Vocabularies: []VocabEntry{
			{Identifier: "jel", Type: "local_os", Config: map[string]any{"host": "localhost", "port": 9200}},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_NoVocabularies(t *testing.T) {
	cfg := validConfig()
	cfg.Vocabularies = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty vocabularies")
	}
	if err.Error() != "vocabularies must be a non-empty list" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_VocabularyMissingFields(t *testing.T) {
	cases := []struct {
		name  string
		entry VocabEntry
	}{
		{"missing identifier", VocabEntry{Type: "local_os"}},
		{"missing type", VocabEntry{Identifier: "jel"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Vocabularies = []VocabEntry{tc.entry}
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Search.ProbeTimeoutSec != 3 {
		t.Errorf("expected ProbeTimeoutSec=3, got %d", cfg.Search.ProbeTimeoutSec)
	}
	if cfg.Search.QueryTimeoutSec != 5 {
		t.Errorf("expected QueryTimeoutSec=5, got %d", cfg.Search.QueryTimeoutSec)
	}
	if cfg.Cache.TTLSec != 60 {
		t.Errorf("expected TTLSec=60, got %d", cfg.Cache.TTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Search: SearchConfig{ProbeTimeoutSec: 1, QueryTimeoutSec: 2},
		Cache:  CacheConfig{TTLSec: 120},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.ProbeTimeoutSec != 1 {
		t.Errorf("expected ProbeTimeoutSec=1, got %d", cfg.Search.ProbeTimeoutSec)
	}
	if cfg.Cache.TTLSec != 120 {
		t.Errorf("expected TTLSec=120, got %d", cfg.Cache.TTLSec)
	}
}

func TestCacheConfig_Enabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("expected cache disabled without addrs")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("expected cache enabled with addrs")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_OS_HOST", "http://search.internal")

	dir := t.TempDir()
	data := `
http:
  port: 8080
vocabularies:
  - identifier: jel
    type: local_os
    config:
      host: "${TEST_OS_HOST}"
      port: "${TEST_OS_PORT:-9200}"
`
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vc := cfg.Vocabularies[0].Config
	if vc["host"] != "http://search.internal" {
		t.Errorf("expected expanded host, got %v", vc["host"])
	}
	if vc["port"] != "9200" {
		t.Errorf("expected default port 9200, got %v", vc["port"])
	}
}
