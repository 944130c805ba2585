package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Schedule.CacheTTL != 10*time.Minute {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[server]
addr = ":9000"

[storage]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[redis]
addr = "cache:6379"

[schedule]
epsilon_days = 1
cache_ttl = "2m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != BackendMongo || cfg.Storage.MongoURI != "mongodb://db:27017" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Database != "critpath" {
		t.Errorf("database default lost: %q", cfg.Storage.Database)
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Schedule.EpsilonDays != 1 || cfg.Schedule.CacheTTL != 2*time.Minute {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout default lost: %s", cfg.Server.RequestTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "[server]\naddr = \":9000\"\n")
	t.Setenv("CRITPATH_SERVER_ADDR", ":7000")
	t.Setenv("CRITPATH_SCHEDULE_EPSILON_DAYS", "2")
	t.Setenv("CRITPATH_SCHEDULE_CACHE_TTL", "30s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Schedule.EpsilonDays != 2 || cfg.Schedule.CacheTTL != 30*time.Second {
		t.Errorf("schedule = %+v", cfg.Schedule)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		want    string
	}{
		{"unknown key", "[server]\nport = 1\n", nil, "unknown key"},
		{"bad toml", "[server\n", nil, "config"},
		{"unknown backend", "[storage]\nbackend = \"sqlite\"\n", nil, "unknown storage backend"},
		{"mongo without uri", "[storage]\nbackend = \"mongo\"\n", nil, "mongo_uri"},
		{"negative epsilon", "[schedule]\nepsilon_days = -1\n", nil, "epsilon_days"},
		{"bad env int", "", map[string]string{"CRITPATH_REDIS_DB": "x"}, "CRITPATH_REDIS_DB"},
		{"bad env duration", "", map[string]string{"CRITPATH_SCHEDULE_CACHE_TTL": "soon"}, "CRITPATH_SCHEDULE_CACHE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("explicit missing file should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("missing default file should be ignored: %v", err)
	}
}
