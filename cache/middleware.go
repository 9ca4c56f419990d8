package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// ExecutorFunc is the function signature for running the real tool.
type ExecutorFunc func(ctx context.Context, toolName string, input any) (string, error)

// Middleware wraps tool execution with the pre-check / post-store protocol.
// Concurrent misses for the same cache key are collapsed with singleflight,
// so an identical invocation issued while another is in flight waits for its
// result instead of running the tool again. Side-effecting tools bypass
// deduplication entirely: each call must really execute.
//
// Errors are never cached.
type Middleware struct {
	ctrl  *Controller
	keyer Keyer
	group singleflight.Group
}

// NewMiddleware creates a Middleware over the controller. A nil keyer falls
// back to the controller's default derivation.
func NewMiddleware(ctrl *Controller, keyer Keyer) *Middleware {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return &Middleware{ctrl: ctrl, keyer: keyer}
}

// Execute runs the tool with caching. On a hit the executor is not called.
func (m *Middleware) Execute(ctx context.Context, toolName string, input any, exec ExecutorFunc) (string, error) {
	if !m.ctrl.Cacheable(toolName) {
		return exec(ctx, toolName, input)
	}

	key, err := m.keyer.Key(toolName, input)
	if err != nil {
		// Cannot identify the call; execute without caching.
		return exec(ctx, toolName, input)
	}

	if res := m.ctrl.PreCheck(ctx, toolName, input); res.Hit {
		return res.Result, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		result, err := exec(ctx, toolName, input)
		if err != nil {
			return "", err
		}
		m.ctrl.PostStore(ctx, toolName, input, result)
		return result, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
