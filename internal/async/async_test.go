package async

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMapPreservesOrder(t *testing.T) {
	items := []int{5, 3, 9, 1, 7}
	got, err := ParallelMap(context.Background(), items, 2, func(ctx context.Context, n int) (string, error) {
		return strconv.Itoa(n * 10), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"50", "30", "90", "10", "70"}, got)
}

func TestParallelMapHonorsConcurrencyLimit(t *testing.T) {
	const limit = 3
	var inFlight, peak int64
	var mu sync.Mutex

	items := make([]int, 40)
	_, err := ParallelMap(context.Background(), items, limit, func(ctx context.Context, _ int) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		atomic.AddInt64(&inFlight, -1)
		return 0, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int64(limit))
}

func TestParallelMapPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParallelMap(context.Background(), []int{1, 2, 3}, 0, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestParallelMapEmptyInput(t *testing.T) {
	got, err := ParallelMap(context.Background(), nil, 4, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}
