package ocr

import (
	"strconv"
	"strings"
)

// InputOption mutates an Input before it is sent to the engine.
type InputOption func(*Input)

// WithLanguages sets language hints (for example "eng", "chi_sim").
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI sets the DPI hint. Non-positive values clear it.
func WithDPI(dpi int) InputOption {
	return func(in *Input) {
		if dpi < 0 {
			dpi = 0
		}
		in.DPI = dpi
	}
}

// WithLevel sets the iterator level.
func WithLevel(level Level) InputOption {
	return func(in *Input) { in.Level = level }
}

// WithTesseractPSM sets the page segmentation mode variable for Tesseract.
func WithTesseractPSM(mode int) InputOption {
	return withMetadata("tessedit_pageseg_mode", strconv.Itoa(mode))
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) InputOption {
	if chars == "" {
		return func(*Input) {}
	}
	return withMetadata("tessedit_char_whitelist", chars)
}

func withMetadata(key, value string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata[key] = value
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
