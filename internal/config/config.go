// Package config handles site and viewer configuration loading.
package config

import "time"

// Config holds all settings for the site server, the CLI and the desktop viewer.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Assets  AssetsConfig  `yaml:"assets"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Inquiry InquiryConfig `yaml:"inquiry"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	BaseURL         string        `yaml:"base_url"` // absolute origin used in sitemap links
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// CatalogConfig selects the catalog source.
type CatalogConfig struct {
	Path  string `yaml:"path"`  // empty = embedded catalog
	Watch bool   `yaml:"watch"` // rebuild when Path changes on disk
}

// AssetsConfig controls where model and image references resolve.
type AssetsConfig struct {
	StaticDir    string        `yaml:"static_dir"` // serves /assets/...
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	FetchRetries int           `yaml:"fetch_retries"`
	CheckRate    int           `yaml:"check_rate"`    // remote checks per second
	CheckWorkers int           `yaml:"check_workers"` // concurrent checks
}

// ViewerConfig holds the interactive model viewer tuning.
type ViewerConfig struct {
	Width            int           `yaml:"width"`
	Height           int           `yaml:"height"`
	RotationSpeed    float32       `yaml:"rotation_speed"` // radians per second
	FlyToDuration    time.Duration `yaml:"fly_to_duration"`
	ClickMaxDuration time.Duration `yaml:"click_max_duration"`
	DragThreshold    float32       `yaml:"drag_threshold"`   // pixels
	MinFlyDistance   float32       `yaml:"min_fly_distance"` // closest a click-to-zoom gets to the model
	TickRate         int           `yaml:"tick_rate"`        // websocket session frames per second
	VSync            bool          `yaml:"vsync"`
	Fullscreen       bool          `yaml:"fullscreen"`
}

// InquiryConfig selects how contact and product inquiries are delivered.
type InquiryConfig struct {
	Endpoint       string        `yaml:"endpoint"` // empty = simulated submission
	SimulatedDelay time.Duration `yaml:"simulated_delay"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			BaseURL:         "http://localhost:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:  "",
			Watch: false,
		},
		Assets: AssetsConfig{
			StaticDir:    "public",
			FetchTimeout: 30 * time.Second,
			FetchRetries: 2,
			CheckRate:    5,
			CheckWorkers: 4,
		},
		Viewer: ViewerConfig{
			Width:            480,
			Height:           650,
			RotationSpeed:    0.5,
			FlyToDuration:    800 * time.Millisecond,
			ClickMaxDuration: 50 * time.Millisecond,
			DragThreshold:    4,
			MinFlyDistance:   1,
			TickRate:         30,
			VSync:            true,
			Fullscreen:       false,
		},
		Inquiry: InquiryConfig{
			Endpoint:       "",
			SimulatedDelay: time.Second,
			Timeout:        10 * time.Second,
			Retries:        2,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
