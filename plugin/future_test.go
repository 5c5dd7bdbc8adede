package plugin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture(t *testing.T) {
	ctx := context.Background()

	t.Run("resolved", func(t *testing.T) {
		v, err := Resolved(42).Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("rejected", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Rejected[string](boom).Await(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("completes once", func(t *testing.T) {
		f, complete := NewFuture[string]()
		complete("first", nil)
		complete("second", errors.New("ignored"))
		v, err := f.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, "first", v)
	})

	t.Run("go runs fn", func(t *testing.T) {
		f := Go(ctx, func(context.Context) ([]byte, error) { return []byte("x"), nil })
		<-f.Done()
		v, err := f.Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), v)
	})

	t.Run("go recovers panic", func(t *testing.T) {
		f := Go(ctx, func(context.Context) (int, error) { panic("bad plugin") })
		_, err := f.Await(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad plugin")
	})

	t.Run("await honors context", func(t *testing.T) {
		f, _ := NewFuture[int]()
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := f.Await(cctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
