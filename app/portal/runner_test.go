package portal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_DeliversResult(t *testing.T) {
	r := NewRunner(0)

	var got string
	var gotErr error
	Go(r, func(context.Context) (string, error) { return "done", nil },
		func(v string, err error) { got, gotErr = v, err })

	apply := <-r.Completions()
	apply()
	assert.Equal(t, "done", got)
	assert.NoError(t, gotErr)
}

func TestRunner_DeliversFailure(t *testing.T) {
	r := NewRunner(0)

	boom := errors.New("boom")
	var gotErr error
	Go(r, func(context.Context) (int, error) { return 0, boom },
		func(_ int, err error) { gotErr = err })

	apply := <-r.Completions()
	apply()
	assert.ErrorIs(t, gotErr, boom, "failure arrives through the same channel as success")
}

func TestRunner_CapturesPanic(t *testing.T) {
	r := NewRunner(0)

	var gotErr error
	Go(r, func(context.Context) (int, error) { panic("blown up") },
		func(_ int, err error) { gotErr = err })

	apply := <-r.Completions()
	apply()
	require.Error(t, gotErr)
	assert.Contains(t, gotErr.Error(), "blown up")
}

func TestRunner_SubmitDoesNotBlock(t *testing.T) {
	r := NewRunner(0)

	release := make(chan struct{})
	done := func(struct{}, error) {}
	for i := 0; i < 10; i++ {
		Go(r, func(context.Context) (struct{}, error) {
			<-release
			return struct{}{}, nil
		}, done)
	}
	close(release) // submission returned for all ten before any completed

	for i := 0; i < 10; i++ {
		select {
		case apply := <-r.Completions():
			apply()
		case <-time.After(5 * time.Second):
			t.Fatal("completion not delivered")
		}
	}
}

func TestRunner_EachTaskCompletesOnce(t *testing.T) {
	r := NewRunner(0)

	const tasks = 25
	var calls int32
	for i := 0; i < tasks; i++ {
		Go(r, func(context.Context) (int, error) { return 1, nil },
			func(int, error) { atomic.AddInt32(&calls, 1) })
	}
	for i := 0; i < tasks; i++ {
		(<-r.Completions())()
	}
	assert.Equal(t, int32(tasks), atomic.LoadInt32(&calls))

	select {
	case <-r.Completions():
		t.Fatal("unexpected extra completion")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	r := NewRunner(2)

	var active, peak int32
	var mu sync.Mutex
	gate := make(chan struct{})

	for i := 0; i < 6; i++ {
		Go(r, func(context.Context) (struct{}, error) {
			n := atomic.AddInt32(&active, 1)
			mu.Lock()
			if n > peak {
				peak = n
			}
			mu.Unlock()
			<-gate
			atomic.AddInt32(&active, -1)
			return struct{}{}, nil
		}, func(struct{}, error) {})
	}

	time.Sleep(200 * time.Millisecond) // let the pool saturate
	close(gate)
	for i := 0; i < 6; i++ {
		select {
		case apply := <-r.Completions():
			apply()
		case <-time.After(5 * time.Second):
			t.Fatal("completion not delivered")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int32(2), "no more than maxWorkers ops in flight")
}
