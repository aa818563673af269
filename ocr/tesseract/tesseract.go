// Package tesseract provides an OCR engine backed by the Tesseract library
// through gosseract. Importing it makes Tesseract the default engine.
package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/adbocr/ocr"
	"github.com/otiai10/gosseract/v2"
)

func init() {
	ocr.SetDefaultEngine(NewEngine())
}

// Engine implements ocr.Engine with a fresh gosseract client per call.
type Engine struct {
	clientFactory func() *gosseract.Client
}

func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Detect reports one detection per text line, or per word at
// ocr.LevelWord, with Tesseract's 0-100 confidence scaled to 0-1.
func (e *Engine) Detect(ctx context.Context, in ocr.Input) ([]ocr.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := configure(c, in); err != nil {
		return nil, err
	}

	boxes, err := c.GetBoundingBoxes(iteratorLevel(in.Level))
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	detections := make([]ocr.Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		detections = append(detections, ocr.Detection{
			Text:       text,
			Box:        b.Box,
			Confidence: b.Confidence / 100.0,
		})
	}

	return detections, nil
}

func configure(c *gosseract.Client, in ocr.Input) error {
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	return nil
}

func iteratorLevel(level ocr.Level) gosseract.PageIteratorLevel {
	if level == ocr.LevelWord {
		return gosseract.RIL_WORD
	}
	return gosseract.RIL_TEXTLINE
}
