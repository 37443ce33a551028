package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagAddr       = flag.String("addr", "", "HTTP listen address")
	flagCatalog    = flag.String("catalog", "", "Path to a catalog YAML file (default: embedded)")
	flagWatch      = flag.Bool("watch", false, "Reload the catalog file when it changes")
	flagStatic     = flag.String("static", "", "Directory served under /assets")
	flagInquiryURL = flag.String("inquiry-endpoint", "", "Forward inquiries to this URL instead of simulating")
	flagWindowed   = flag.Bool("windowed", false, "Run the desktop viewer in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run the desktop viewer in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Viewer width in pixels")
	flagHeight     = flag.Int("height", 0, "Viewer height in pixels")
)

// ParseFlags parses command-line flags. Commands that go through cobra
// register these flags on the root command instead.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagCatalog != "" {
		cfg.Catalog.Path = *flagCatalog
	}
	if *flagWatch {
		cfg.Catalog.Watch = true
	}
	if *flagStatic != "" {
		cfg.Assets.StaticDir = *flagStatic
	}
	if *flagInquiryURL != "" {
		cfg.Inquiry.Endpoint = *flagInquiryURL
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
}
