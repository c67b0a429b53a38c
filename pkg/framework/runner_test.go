package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunnerCancelsOnFailure(t *testing.T) {
	failure := errors.New("boom")
	r := NewRunner()
	r.Go(
		NewLoop("fails", time.Millisecond, ControlFunc(func(ctx context.Context) error {
			return failure
		})),
		ControlFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}).asRunnable(),
	)
	err := r.Wait()
	require.Error(t, err)
	require.True(t, errors.Is(err, failure))
	require.Error(t, r.Context.Err())
}

func TestRunnerStop(t *testing.T) {
	r := NewRunner()
	r.Go(NewLoop("idle", time.Millisecond, ControlFunc(func(ctx context.Context) error {
		return nil
	})))
	r.Stop()
	require.NoError(t, r.Wait())
}

func TestLoopCadence(t *testing.T) {
	var count int32
	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()
	l := NewLoop("count", 10*time.Millisecond, ControlFunc(func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return nil
	}))
	require.Equal(t, "count", l.Name())
	err := l.Run(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	n := atomic.LoadInt32(&count)
	require.True(t, n >= 2 && n <= 7, "iterations: %d", n)
}

func TestLoopStopsOnControllerError(t *testing.T) {
	failure := errors.New("read failed")
	l := NewLoop("fail", time.Millisecond, ControlFunc(func(ctx context.Context) error {
		return failure
	}))
	require.Equal(t, failure, l.Run(context.Background()))
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, Sleep(ctx, time.Hour))
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	first, second := errors.New("first"), errors.New("second")
	err := errs.Add(first, nil, second).Aggregate()
	require.Equal(t, "Multiple errors:\nfirst\nsecond", err.Error())
	require.True(t, errors.Is(err, second))
}

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func (f ControlFunc) asRunnable() Runnable { return runFunc(f) }
