// Package ocr turns screen captures into positioned text. Engines are
// pluggable: importing ocr/tesseract installs the Tesseract engine as the
// default, otherwise a no-op engine that detects nothing is used.
package ocr
