package cancellation

import (
	"context"
	"sync/atomic"
)

// Token is a cooperative cancellation flag. The zero value is ready to use
// and unsignaled.
type Token struct {
	signaled atomic.Bool
}

func New() *Token {
	return &Token{}
}

// Signal marks the token as cancelled. Calling it more than once, or from
// many goroutines at the same time, is safe.
func (t *Token) Signal() {
	t.signaled.Store(true)
}

// IsSignaled reports whether Signal has been called.
func (t *Token) IsSignaled() bool {
	return t.signaled.Load()
}

// SignalOnDone arranges for the token to be signaled once ctx is done.
// The returned stop function detaches the token from ctx; it reports
// whether the signal had not fired yet.
func (t *Token) SignalOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, t.Signal)
}
