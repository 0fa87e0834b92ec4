package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadlineRuntime struct {
	Local
	hadDeadline bool
}

func (d *deadlineRuntime) ListUnits(ctx context.Context) ([]Unit, error) {
	_, d.hadDeadline = ctx.Deadline()
	return nil, nil
}

func TestWithTimeout(t *testing.T) {
	rt := &deadlineRuntime{}
	assert.Same(t, rt, WithTimeout(rt, 0))

	wrapped := WithTimeout(rt, time.Minute)
	_, err := wrapped.ListUnits(context.Background())
	require.NoError(t, err)
	assert.True(t, rt.hadDeadline)
}
