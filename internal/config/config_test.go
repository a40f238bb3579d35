// Aerocite - Drone Flight Telemetry and Violation Decision Pipeline
// Copyright 2026 Aerocite contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aerocite/aerocite

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Penalty.Mode != "local" {
		t.Errorf("Penalty.Mode = %q, want local", cfg.Penalty.Mode)
	}
	if !cfg.Penalty.Breaker.Enabled {
		t.Error("Penalty.Breaker.Enabled = false, want true")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BADGER_PATH", "/tmp/aerocite-test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/aerocite-test" {
		t.Errorf("Database.Path = %q, want /tmp/aerocite-test", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("API.CORSOrigins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("API.CORSOrigins[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 3000
penalty:
  mode: http
  base_url: http://penalty.internal:8080
logging:
  format: console
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Penalty.Mode != "http" {
		t.Errorf("Penalty.Mode = %q, want http", cfg.Penalty.Mode)
	}
	if cfg.Penalty.BaseURL != "http://penalty.internal:8080" {
		t.Errorf("Penalty.BaseURL = %q", cfg.Penalty.BaseURL)
	}
	// Timeout not in the file, default preserved.
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %s, want 30s", cfg.Server.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Server.Timeout = 0 },
			wantErr: "server.timeout",
		},
		{
			name: "missing database path",
			mutate: func(c *Config) {
				c.Database.Path = ""
				c.Database.InMemory = false
			},
			wantErr: "database.path",
		},
		{
			name: "in-memory without path is fine",
			mutate: func(c *Config) {
				c.Database.Path = ""
				c.Database.InMemory = true
			},
		},
		{
			name:    "unknown penalty mode",
			mutate:  func(c *Config) { c.Penalty.Mode = "grpc" },
			wantErr: "penalty.mode",
		},
		{
			name: "http mode requires base URL",
			mutate: func(c *Config) {
				c.Penalty.Mode = "http"
				c.Penalty.BaseURL = ""
			},
			wantErr: "penalty.base_url",
		},
		{
			name: "max page size below default",
			mutate: func(c *Config) {
				c.API.DefaultPageSize = 50
				c.API.MaxPageSize = 10
			},
			wantErr: "api.max_page_size",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
