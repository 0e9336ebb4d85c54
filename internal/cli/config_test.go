package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhalver/gatefold/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("loadConfig() with explicit missing file returned nil error")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
	// Defaults are still usable after the error.
	if cfg.Cache.Backend != backendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, backendFile)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":8080")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
[cache]
backend = "redis"
redis_addr = "redis.internal:6379"

[optimize]
schedule = "h,cx"
rounds = 3

[serve]
addr = ":9090"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Cache.Backend != backendRedis {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, backendRedis)
	}
	if cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("Cache.RedisAddr = %q, want %q", cfg.Cache.RedisAddr, "redis.internal:6379")
	}
	if cfg.Optimize.Schedule != "h,cx" {
		t.Errorf("Optimize.Schedule = %q, want %q", cfg.Optimize.Schedule, "h,cx")
	}
	if cfg.Optimize.Rounds != 3 {
		t.Errorf("Optimize.Rounds = %d, want 3", cfg.Optimize.Rounds)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":9090")
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[optimize]
rounds = 2
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Cache.Backend != backendFile {
		t.Errorf("Cache.Backend = %q, want default %q", cfg.Cache.Backend, backendFile)
	}
	if cfg.Optimize.Rounds != 2 {
		t.Errorf("Optimize.Rounds = %d, want 2", cfg.Optimize.Rounds)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode errors.Code
	}{
		{
			name:     "malformed toml",
			content:  "[cache\nbackend = file",
			wantCode: errors.ErrCodeInvalidConfig,
		},
		{
			name:     "unknown backend",
			content:  "[cache]\nbackend = \"memcached\"\n",
			wantCode: errors.ErrCodeInvalidConfig,
		},
		{
			name:     "redis without addr",
			content:  "[cache]\nbackend = \"redis\"\nredis_addr = \"\"\n",
			wantCode: errors.ErrCodeInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := loadConfig(path)
			if err == nil {
				t.Fatal("loadConfig() error = nil, want error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}
