// Package ocrtest provides a scripted OCR engine for tests.
package ocrtest

import (
	"context"
	"sync"

	"github.com/mobile-next/adbocr/ocr"
)

// Engine returns Detections (or Err) for every call and records inputs.
type Engine struct {
	Detections []ocr.Detection
	Err        error

	mu     sync.Mutex
	inputs []ocr.Input
}

func (e *Engine) Name() string {
	return "fake"
}

func (e *Engine) Detect(ctx context.Context, input ocr.Input) ([]ocr.Detection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputs = append(e.inputs, input)
	if e.Err != nil {
		return nil, e.Err
	}
	return append([]ocr.Detection(nil), e.Detections...), nil
}

// Inputs returns every input Detect received.
func (e *Engine) Inputs() []ocr.Input {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]ocr.Input(nil), e.inputs...)
}
