package transport

import (
	"context"
	"io"
	"time"
)

type timeoutRuntime struct {
	Runtime
	timeout time.Duration
}

// WithTimeout bounds every call made through rt. A zero or negative timeout returns rt unchanged.
func WithTimeout(rt Runtime, timeout time.Duration) Runtime {
	if timeout <= 0 {
		return rt
	}
	return &timeoutRuntime{Runtime: rt, timeout: timeout}
}

func (t *timeoutRuntime) ListUnits(ctx context.Context) ([]Unit, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Runtime.ListUnits(ctx)
}

func (t *timeoutRuntime) Exec(ctx context.Context, unit Unit, argv []string) ([]byte, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Runtime.Exec(ctx, unit, argv)
}

func (t *timeoutRuntime) Copy(ctx context.Context, unit Unit, remotePath string, localDir string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Runtime.Copy(ctx, unit, remotePath, localDir)
}

func (t *timeoutRuntime) Logs(ctx context.Context, unit Unit, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Runtime.Logs(ctx, unit, w)
}

func (t *timeoutRuntime) Describe(ctx context.Context, unit Unit) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Runtime.Describe(ctx, unit)
}
