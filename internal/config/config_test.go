package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points KNOWGRAPH_HOME at a temp dir and clears every override.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(EnvHome, home)
	for _, k := range []string{
		EnvMemoryFile, EnvBackend, EnvSyncAddr, EnvLogLevel, EnvStrictRelations,
		EnvS3Bucket, EnvS3Key, EnvS3Region, EnvS3Endpoint, EnvS3PathStyle,
		EnvS3AccessKey, EnvS3SecretKey, EnvS3SessionToken,
	} {
		t.Setenv(k, "")
	}
	return home
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %s, want file", cfg.Backend)
	}
	if want := filepath.Join(home, "memory.jsonl"); cfg.MemoryFile != want {
		t.Errorf("MemoryFile = %s, want %s", cfg.MemoryFile, want)
	}
	if cfg.Viewer.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Viewer.PollInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_MemoryFileEnv(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  func(home string) string
	}{
		{"relative", "data/graph.jsonl", func(home string) string { return filepath.Join(home, "data", "graph.jsonl") }},
		{"absolute", "/var/lib/kg.jsonl", func(string) string { return "/var/lib/kg.jsonl" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			t.Setenv(EnvMemoryFile, tt.value)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if want := tt.want(home); cfg.MemoryFile != want {
				t.Errorf("MemoryFile = %s, want %s", cfg.MemoryFile, want)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	home := isolate(t)
	yml := `
backend: sqlite
sqlite_path: graph.db
log:
  level: debug
  format: json
sync:
  addr: ":9000"
viewer:
  poll_interval: 500ms
`
	if err := os.WriteFile(filepath.Join(home, FileName), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvSyncAddr, "127.0.0.1:7000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %s, want sqlite", cfg.Backend)
	}
	if want := filepath.Join(home, "graph.db"); cfg.SQLitePath != want {
		t.Errorf("SQLitePath = %s, want %s", cfg.SQLitePath, want)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "debug" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Sync.Addr != "127.0.0.1:7000" {
		t.Errorf("Sync.Addr = %s, env should win over file", cfg.Sync.Addr)
	}
	if cfg.Viewer.PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", cfg.Viewer.PollInterval)
	}
}

func TestLoad_S3Env(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackend, "S3")
	t.Setenv(EnvS3Bucket, "kg")
	t.Setenv(EnvS3AccessKey, "AKIA")
	t.Setenv(EnvS3SecretKey, "secret")
	t.Setenv(EnvS3SessionToken, "token")
	t.Setenv(EnvS3PathStyle, "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != BackendS3 {
		t.Errorf("Backend = %s, want s3", cfg.Backend)
	}
	want := S3Config{
		Bucket:          "kg",
		Key:             DefaultMemoryFile,
		Region:          "us-east-1",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		SessionToken:    "token",
	}
	if cfg.S3 != want {
		t.Errorf("S3 = %+v, want %+v", cfg.S3, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	home := isolate(t)
	if err := os.WriteFile(filepath.Join(home, FileName), []byte("backend: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_BadBoolEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStrictRelations, "sometimes")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for unparsable bool")
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "postgres" }, "Backend"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
		{"poll too fast", func(c *Config) { c.Viewer.PollInterval = time.Millisecond }, "PollInterval"},
		{"s3 without bucket", func(c *Config) { c.Backend = BackendS3 }, "Bucket"},
		{"s3 with bucket", func(c *Config) { c.Backend = BackendS3; c.S3.Bucket = "kg" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %s", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	c := Config{HomeDir: "/base"}
	if got := c.Resolve("x.jsonl"); got != filepath.Join("/base", "x.jsonl") {
		t.Errorf("Resolve(relative) = %s", got)
	}
	if got := c.Resolve("/abs.jsonl"); got != "/abs.jsonl" {
		t.Errorf("Resolve(absolute) = %s", got)
	}
	if got := c.Resolve(""); got != "" {
		t.Errorf("Resolve(empty) = %s", got)
	}
}
