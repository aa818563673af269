package ocr

import (
	"context"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine = noopEngine{}
)

// DefaultEngine returns the engine used when none is configured.
func DefaultEngine() Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}

// SetDefaultEngine replaces the default engine.
func SetDefaultEngine(engine Engine) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultEngine = engine
}

type noopEngine struct{}

func (noopEngine) Name() string {
	return "noop"
}

func (noopEngine) Detect(ctx context.Context, input Input) ([]Detection, error) {
	return nil, nil
}
