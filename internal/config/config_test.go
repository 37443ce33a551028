package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Catalog.Path != "" {
		t.Errorf("expected embedded catalog by default, got %q", cfg.Catalog.Path)
	}

	// Viewer defaults mirror the product page viewport and interaction timings.
	if cfg.Viewer.Width != 480 || cfg.Viewer.Height != 650 {
		t.Errorf("expected viewer 480x650, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if cfg.Viewer.RotationSpeed != 0.5 {
		t.Errorf("expected rotation speed 0.5, got %f", cfg.Viewer.RotationSpeed)
	}
	if cfg.Viewer.ClickMaxDuration != 50*time.Millisecond {
		t.Errorf("expected click window 50ms, got %v", cfg.Viewer.ClickMaxDuration)
	}

	if cfg.Inquiry.Endpoint != "" {
		t.Errorf("expected simulated inquiries by default, got endpoint %q", cfg.Inquiry.Endpoint)
	}
	if cfg.Inquiry.SimulatedDelay != time.Second {
		t.Errorf("expected simulated delay 1s, got %v", cfg.Inquiry.SimulatedDelay)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  addr: ":9090"
  base_url: "https://valves.example.com"
  read_timeout: 5s

catalog:
  path: "/srv/catalog.yaml"
  watch: true

viewer:
  width: 640
  height: 800
  rotation_speed: 0.25
  fly_to_duration: 1200ms
  drag_threshold: 6
  min_fly_distance: 1.5

inquiry:
  endpoint: "https://crm.example.com/inquiries"
  retries: 5

logging:
  level: "debug"
  log_file: "site.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Catalog.Path != "/srv/catalog.yaml" || !cfg.Catalog.Watch {
		t.Errorf("unexpected catalog config: %+v", cfg.Catalog)
	}
	if cfg.Viewer.Width != 640 || cfg.Viewer.Height != 800 {
		t.Errorf("expected viewer 640x800, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
	}
	if cfg.Viewer.RotationSpeed != 0.25 {
		t.Errorf("expected rotation speed 0.25, got %f", cfg.Viewer.RotationSpeed)
	}
	if cfg.Viewer.FlyToDuration != 1200*time.Millisecond {
		t.Errorf("expected fly-to 1.2s, got %v", cfg.Viewer.FlyToDuration)
	}
	if cfg.Viewer.MinFlyDistance != 1.5 {
		t.Errorf("expected min fly distance 1.5, got %v", cfg.Viewer.MinFlyDistance)
	}
	if cfg.Inquiry.Endpoint != "https://crm.example.com/inquiries" || cfg.Inquiry.Retries != 5 {
		t.Errorf("unexpected inquiry config: %+v", cfg.Inquiry)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "site.log" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
viewer:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }},
		{"zero tick rate", func(c *Config) { c.Viewer.TickRate = 0 }},
		{"zero fly-to", func(c *Config) { c.Viewer.FlyToDuration = 0 }},
		{"negative min fly distance", func(c *Config) { c.Viewer.MinFlyDistance = -1 }},
		{"zero workers", func(c *Config) { c.Assets.CheckWorkers = 0 }},
		{"watch without path", func(c *Config) { c.Catalog.Watch = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "valvesite.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  addr: \":1\"\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find valvesite.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "addr flag",
			setup: func() { *flagAddr = "127.0.0.1:7000" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Server.Addr != "127.0.0.1:7000" {
					t.Errorf("expected addr 127.0.0.1:7000, got %s", cfg.Server.Addr)
				}
			},
			teardown: func() { *flagAddr = "" },
		},
		{
			name: "catalog and watch flags",
			setup: func() {
				*flagCatalog = "catalog.yaml"
				*flagWatch = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Catalog.Path != "catalog.yaml" || !cfg.Catalog.Watch {
					t.Errorf("unexpected catalog config: %+v", cfg.Catalog)
				}
			},
			teardown: func() {
				*flagCatalog = ""
				*flagWatch = false
			},
		},
		{
			name:  "inquiry endpoint flag",
			setup: func() { *flagInquiryURL = "http://localhost:9999/in" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Inquiry.Endpoint != "http://localhost:9999/in" {
					t.Errorf("unexpected endpoint %q", cfg.Inquiry.Endpoint)
				}
			},
			teardown: func() { *flagInquiryURL = "" },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Viewer.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 1024
				*flagHeight = 768
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Viewer.Width != 1024 || cfg.Viewer.Height != 768 {
					t.Errorf("expected 1024x768, got %dx%d", cfg.Viewer.Width, cfg.Viewer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
viewer:
  width: 600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 720
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Viewer.Width != 720 {
		t.Errorf("expected width 720 from flag, got %d", cfg.Viewer.Width)
	}
	if cfg.Viewer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Viewer.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.Addr = ":7070"
	cfg.Viewer.FlyToDuration = 2 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Server.Addr != ":7070" || loaded.Viewer.FlyToDuration != 2*time.Second {
		t.Errorf("round trip lost values: %+v", loaded.Server)
	}
}
