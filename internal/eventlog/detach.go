package eventlog

import (
	"context"

	"github.com/gaedke-construction/smartquote/pkg/logging"
)

// Detach runs fn on its own goroutine and discards the result.
//
// The context handed to fn keeps the caller's values but is never cancelled
// by the caller, so the work can outlive the request that started it. A
// non-nil error is logged at debug level and otherwise ignored; callers must
// not depend on fn having run.
func Detach(ctx context.Context, logger *logging.Logger, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil && logger != nil {
				logger.Debug("detached task panicked", "task", name, "panic", r)
			}
		}()
		if err := fn(detached); err != nil && logger != nil {
			logger.Debug("detached task failed", "task", name, "error", err)
		}
	}()
}
