// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	results, err := Map(context.Background(), 7, items, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 100)
	for i, got := range results {
		assert.Equal(t, i*2, got)
	}
}

func TestMapEmptyInput(t *testing.T) {
	results, err := Map(context.Background(), 4, nil, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMapPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	items := []int{0, 1, 2, 3, 4}

	_, err := Map(context.Background(), 2, items, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMapRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := make([]int, 50)
	var calls atomic.Int64
	_, err := Map(ctx, 3, items, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls.Load(), int64(50))
}

func TestMapDefaultsWorkerCount(t *testing.T) {
	results, err := Map(context.Background(), 0, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		return n + 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, results)
}
