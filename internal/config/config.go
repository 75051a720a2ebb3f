// Package config resolves knowgraph's runtime configuration from an optional
// YAML file, environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendS3     = "s3"
)

// Environment variables read by Load.
const (
	EnvHome            = "KNOWGRAPH_HOME"
	EnvMemoryFile      = "MEMORY_FILE_PATH"
	EnvBackend         = "KNOWGRAPH_BACKEND"
	EnvSyncAddr        = "KNOWGRAPH_SYNC_ADDR"
	EnvLogLevel        = "KNOWGRAPH_LOG_LEVEL"
	EnvStrictRelations = "KNOWGRAPH_STRICT_RELATIONS"
	EnvS3Bucket        = "KNOWGRAPH_S3_BUCKET"
	EnvS3Key           = "KNOWGRAPH_S3_KEY"
	EnvS3Region        = "KNOWGRAPH_S3_REGION"
	EnvS3Endpoint      = "KNOWGRAPH_S3_ENDPOINT"
	EnvS3PathStyle     = "KNOWGRAPH_S3_PATH_STYLE"
	EnvS3AccessKey     = "KNOWGRAPH_S3_ACCESS_KEY_ID"
	EnvS3SecretKey     = "KNOWGRAPH_S3_SECRET_ACCESS_KEY"
	EnvS3SessionToken  = "KNOWGRAPH_S3_SESSION_TOKEN"
)

const (
	// DefaultMemoryFile is the record file name used when none is configured.
	DefaultMemoryFile = "memory.jsonl"

	// DefaultSQLiteFile is the database name used by the sqlite backend.
	DefaultSQLiteFile = "memory.db"

	// FileName is the optional config file inside the home directory.
	FileName = "config.yaml"
)

// Config is the full runtime configuration.
type Config struct {
	// HomeDir is the base directory relative paths resolve against.
	HomeDir string `yaml:"-"`

	Backend         string `yaml:"backend" validate:"oneof=file sqlite s3"`
	MemoryFile      string `yaml:"memory_file" validate:"required"`
	SQLitePath      string `yaml:"sqlite_path"`
	StrictRelations bool   `yaml:"strict_relations"`

	Log    LogConfig    `yaml:"log"`
	Sync   SyncConfig   `yaml:"sync"`
	Viewer ViewerConfig `yaml:"viewer"`
	S3     S3Config     `yaml:"s3"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// SyncConfig controls the HTTP sync endpoint.
type SyncConfig struct {
	// Addr is the listen address. Empty disables the endpoint under `serve`.
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	WatchDebounce  time.Duration `yaml:"watch_debounce" validate:"min=0"`
}

// ViewerConfig controls the polling client.
type ViewerConfig struct {
	URL          string        `yaml:"url" validate:"omitempty,url"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"min=100ms"`
	Jitter       float64       `yaml:"jitter" validate:"gte=0"`
}

// S3Config holds the S3 backend settings.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// validate is shared; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		cfg := sl.Current().Interface().(Config)
		if cfg.Backend == BackendS3 && cfg.S3.Bucket == "" {
			sl.ReportError(cfg.S3.Bucket, "S3.Bucket", "Bucket", "required_for_s3", "")
		}
	}, Config{})
	return v
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	home := defaultHome()
	return Config{
		HomeDir:    home,
		Backend:    BackendFile,
		MemoryFile: filepath.Join(home, DefaultMemoryFile),
		SQLitePath: filepath.Join(home, DefaultSQLiteFile),
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Sync: SyncConfig{
			AllowedOrigins: []string{"*"},
			WatchDebounce:  100 * time.Millisecond,
		},
		Viewer: ViewerConfig{
			URL:          "http://127.0.0.1:8765",
			PollInterval: 2 * time.Second,
			Jitter:       50,
		},
		S3: S3Config{
			Key:    DefaultMemoryFile,
			Region: "us-east-1",
		},
	}
}

func defaultHome() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".knowgraph"
	}
	return filepath.Join(home, ".knowgraph")
}

// Load builds the configuration: defaults, then the YAML file, then
// environment overrides. An empty path means $KNOWGRAPH_HOME/config.yaml,
// which may be absent; an explicit path must exist.
//
// The result is not validated: callers apply flag overrides first and then
// call Validate.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.HomeDir, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.MemoryFile = cfg.Resolve(cfg.MemoryFile)
	cfg.SQLitePath = cfg.Resolve(cfg.SQLitePath)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMemoryFile); v != "" {
		c.MemoryFile = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvSyncAddr); v != "" {
		c.Sync.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvStrictRelations); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvStrictRelations, err)
		}
		c.StrictRelations = b
	}

	if v := os.Getenv(EnvS3Bucket); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv(EnvS3Key); v != "" {
		c.S3.Key = v
	}
	if v := os.Getenv(EnvS3Region); v != "" {
		c.S3.Region = v
	}
	if v := os.Getenv(EnvS3Endpoint); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv(EnvS3PathStyle); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvS3PathStyle, err)
		}
		c.S3.PathStyle = b
	}
	if v := os.Getenv(EnvS3AccessKey); v != "" {
		c.S3.AccessKeyID = v
	}
	if v := os.Getenv(EnvS3SecretKey); v != "" {
		c.S3.SecretAccessKey = v
	}
	if v := os.Getenv(EnvS3SessionToken); v != "" {
		c.S3.SessionToken = v
	}
	return nil
}

// Resolve makes a relative path absolute against HomeDir. Empty stays empty.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.HomeDir, p)
}

// Validate checks the configuration and returns a readable error listing
// every invalid field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
}
