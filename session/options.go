package session

import (
	"time"

	"github.com/mobile-next/adbocr/config"
	"github.com/mobile-next/adbocr/devices"
	"github.com/mobile-next/adbocr/ocr"
)

type options struct {
	transport devices.Transport
	engine    ocr.Engine
	ocrOpts   []ocr.InputOption
	scan      bool
	scanner   *devices.Scanner
	width     int
	height    int
	density   int
}

// Option configures Load.
type Option func(*options)

// WithTransport replaces the adb command line transport.
func WithTransport(t devices.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithAdb uses the adb binary at path with a per-command timeout.
func WithAdb(path string, timeout time.Duration) Option {
	return func(o *options) { o.transport = devices.NewAdbTransport(path, timeout) }
}

// WithEngine sets the OCR engine. The default engine is used otherwise.
func WithEngine(e ocr.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithOCROptions appends options applied to every recognition.
func WithOCROptions(opts ...ocr.InputOption) Option {
	return func(o *options) { o.ocrOpts = append(o.ocrOpts, opts...) }
}

// WithScan enables or disables the local port scan after a failed
// connection to localhost. It is enabled by default.
func WithScan(enabled bool) Option {
	return func(o *options) { o.scan = enabled }
}

// WithScanner replaces the scanner used for the local port scan.
func WithScanner(s *devices.Scanner) Option {
	return func(o *options) { o.scanner = s }
}

// WithScreenSize sets the logical screen size right after connecting.
func WithScreenSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithDensity sets the screen density right after connecting.
func WithDensity(density int) Option {
	return func(o *options) { o.density = density }
}

// OptionsFromConfig translates a loaded configuration into options.
func OptionsFromConfig(cfg *config.Config) []Option {
	opts := []Option{
		WithAdb(cfg.Device.AdbPath, cfg.Device.Timeout),
		WithScan(cfg.Device.Scan),
	}

	if cfg.Device.Width > 0 && cfg.Device.Height > 0 {
		opts = append(opts, WithScreenSize(cfg.Device.Width, cfg.Device.Height))
	}
	if cfg.Device.Density > 0 {
		opts = append(opts, WithDensity(cfg.Device.Density))
	}

	level, _ := ocr.ParseLevel(cfg.OCR.Level)
	ocrOpts := []ocr.InputOption{ocr.WithLevel(level)}
	if len(cfg.OCR.Languages) > 0 {
		ocrOpts = append(ocrOpts, ocr.WithLanguages(cfg.OCR.Languages...))
	}
	if cfg.OCR.PSM > 0 {
		ocrOpts = append(ocrOpts, ocr.WithTesseractPSM(cfg.OCR.PSM))
	}
	if cfg.OCR.Whitelist != "" {
		ocrOpts = append(ocrOpts, ocr.WithTesseractWhitelist(cfg.OCR.Whitelist))
	}

	return append(opts, WithOCROptions(ocrOpts...))
}
