package executor

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_OrderPreserving(t *testing.T) {
	pool := NewWorkerPool(4)

	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}

	results, err := ExecuteParallel(context.Background(), pool, inputs, func(v int) (int, error) {
		return v * 2, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 100)
	for i, r := range results {
		assert.Equal(t, i*2, r)
	}
}

func TestWorkerPool_ErrorHandling(t *testing.T) {
	pool := NewWorkerPool(3)
	boom := errors.New("boom")

	_, err := ExecuteParallel(context.Background(), pool, []int{0, 1, 2, 3, 4}, func(v int) (string, error) {
		if v == 2 || v == 4 {
			return "", boom
		}
		return "ok", nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "index 2")
}

func TestWorkerPool_EmptyInput(t *testing.T) {
	results, err := ExecuteParallel(context.Background(), NewWorkerPool(2), nil, func(v int) (int, error) {
		t.Fatal("operation must not run")
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWorkerPool_WorkerCount(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected int
	}{
		{"Explicit", 4, 4},
		{"Zero", 0, runtime.NumCPU()},
		{"Negative", -1, runtime.NumCPU()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewWorkerPool(tt.input).WorkerCount())
		})
	}
}

func TestWorkerPool_ConcurrentExecution(t *testing.T) {
	pool := NewWorkerPool(4)

	var running, peak int32
	inputs := make([]int, 8)
	_, err := ExecuteParallel(context.Background(), pool, inputs, func(int) (struct{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}

func TestWorkerPool_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	_, err := ExecuteParallel(ctx, NewWorkerPool(2), []int{1, 2, 3}, func(v int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return v, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
