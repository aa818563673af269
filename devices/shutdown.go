package devices

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/mobile-next/adbocr/utils"
)

// ShutdownHook collects cleanup functions run once on SIGINT/SIGTERM or
// when the server stops. Hooks run in reverse registration order, so a
// connection registered after the pool that owns it is closed first.
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. The name is only used in logs and
// in the returned error.
func (s *ShutdownHook) Register(name string, cleanupFn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: cleanupFn})
	utils.Verbose("Registered shutdown hook: %s", name)
}

// RegisterCloser registers c.Close under name.
func (s *ShutdownHook) RegisterCloser(name string, c io.Closer) {
	s.Register(name, c.Close)
}

// Shutdown runs every hook even when some fail and returns the joined
// errors. The registry is empty afterwards.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	utils.Verbose("Executing %d shutdown hook(s)", len(hooks))
	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		if err := hook.fn(); err != nil {
			utils.Warn("Shutdown hook %s failed: %v", hook.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
		}
	}

	return errors.Join(errs...)
}

// Count returns the number of registered hooks.
func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hooks)
}
