package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobile-next/adbocr/utils"
	"gopkg.in/ini.v1"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 5555
	DefaultAdbPath     = "adb"
	DefaultTimeout     = 10 * time.Second
	DefaultLanguage    = "eng"
	DefaultLevel       = "line"
	DefaultPSM         = 3
	DefaultListen      = "localhost:12000"
	DefaultMaxSessions = 8
)

// Device holds connection and screen settings for one device.
type Device struct {
	Host    string
	Port    int
	Serial  string
	Width   int
	Height  int
	Density int
	AdbPath string
	Timeout time.Duration
	Scan    bool
}

// OCR holds recognition settings.
type OCR struct {
	Languages []string
	Level     string
	PSM       int
	Whitelist string
}

// Server holds JSON-RPC server settings.
type Server struct {
	Listen      string
	CORS        bool
	MaxSessions int
}

type Config struct {
	Device Device
	OCR    OCR
	Server Server
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Device: Device{
			Host:    DefaultHost,
			Port:    DefaultPort,
			AdbPath: DefaultAdbPath,
			Timeout: DefaultTimeout,
			Scan:    true,
		},
		OCR: OCR{
			Languages: []string{DefaultLanguage},
			Level:     DefaultLevel,
			PSM:       DefaultPSM,
		},
		Server: Server{
			Listen:      DefaultListen,
			MaxSessions: DefaultMaxSessions,
		},
	}
}

// DefaultPath returns ~/.adbocr/config.ini.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".adbocr", "config.ini")
}

// Load reads the ini file at path on top of the defaults. A missing file is
// not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		utils.Verbose("Config file %s not found, using defaults", path)
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	device := file.Section("device")
	cfg.Device.Host = device.Key("host").MustString(cfg.Device.Host)
	cfg.Device.Port = device.Key("port").MustInt(cfg.Device.Port)
	cfg.Device.Serial = device.Key("serial").String()
	cfg.Device.Width = device.Key("width").MustInt(0)
	cfg.Device.Height = device.Key("height").MustInt(0)
	cfg.Device.Density = device.Key("density").MustInt(0)
	cfg.Device.AdbPath = device.Key("adb_path").MustString(cfg.Device.AdbPath)
	cfg.Device.Timeout = device.Key("timeout").MustDuration(cfg.Device.Timeout)
	cfg.Device.Scan = device.Key("scan").MustBool(cfg.Device.Scan)

	ocrSection := file.Section("ocr")
	if langs := ocrSection.Key("languages").Strings(","); len(langs) > 0 {
		cfg.OCR.Languages = langs
	}
	cfg.OCR.Level = strings.ToLower(ocrSection.Key("level").MustString(cfg.OCR.Level))
	cfg.OCR.PSM = ocrSection.Key("psm").MustInt(cfg.OCR.PSM)
	cfg.OCR.Whitelist = ocrSection.Key("whitelist").String()

	server := file.Section("server")
	cfg.Server.Listen = server.Key("listen").MustString(cfg.Server.Listen)
	cfg.Server.CORS = server.Key("cors").MustBool(cfg.Server.CORS)
	cfg.Server.MaxSessions = server.Key("max_sessions").MustInt(cfg.Server.MaxSessions)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if c.Device.Port < 0 || c.Device.Port > 65535 {
		return fmt.Errorf("device.port out of range: %d", c.Device.Port)
	}
	if c.Device.Width < 0 || c.Device.Height < 0 || c.Device.Density < 0 {
		return fmt.Errorf("device width, height and density must not be negative")
	}
	if (c.Device.Width == 0) != (c.Device.Height == 0) {
		return fmt.Errorf("device.width and device.height must be set together")
	}
	if c.Device.Timeout <= 0 {
		return fmt.Errorf("device.timeout must be positive")
	}
	if c.OCR.Level != "line" && c.OCR.Level != "word" {
		return fmt.Errorf("ocr.level must be 'line' or 'word', got '%s'", c.OCR.Level)
	}
	if c.Server.MaxSessions <= 0 {
		return fmt.Errorf("server.max_sessions must be positive")
	}
	return nil
}
