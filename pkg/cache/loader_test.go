package cache_test

import (
	"context"
	"densitymap/pkg/cache"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type counter struct {
	calls atomic.Int32
	err   atomic.Pointer[error]
}

func (c *counter) load(context.Context) (int, error) {
	n := int(c.calls.Add(1))
	if errp := c.err.Load(); errp != nil {
		return 0, *errp
	}

	return n, nil
}

func (c *counter) fail(err error) { c.err.Store(&err) }
func (c *counter) succeed()       { c.err.Store(nil) }

func TestLoaderTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := &counter{}
	l := cache.New("test", c.load, cache.Options{TTL: time.Hour, Clock: clock.Now})
	ctx := context.Background()

	v, err := l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	clock.Advance(59 * time.Minute)
	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	clock.Advance(time.Minute)
	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.EqualValues(t, 2, c.calls.Load())
}

func TestLoaderZeroTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := &counter{}
	l := cache.New("static", c.load, cache.Options{Clock: clock.Now})

	for range 3 {
		v, err := l.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, v)
		clock.Advance(1000 * time.Hour)
	}
	require.EqualValues(t, 1, c.calls.Load())
}

func TestLoaderErrorWithoutSnapshot(t *testing.T) {
	c := &counter{}
	boom := errors.New("boom")
	c.fail(boom)
	l := cache.New("test", c.load, cache.Options{TTL: time.Hour})

	_, err := l.Get(context.Background())
	require.ErrorIs(t, err, boom)

	_, _, ok := l.Peek()
	require.False(t, ok)

	c.succeed()
	v, err := l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestLoaderServesStaleOnReloadFailure(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	c := &counter{}
	l := cache.New("test", c.load, cache.Options{TTL: time.Minute, Clock: clock.Now})
	ctx := context.Background()

	v, err := l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	clock.Advance(2 * time.Minute)
	c.fail(errors.New("shard unreadable"))
	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	// Every call retries while the snapshot stays expired.
	_, err = l.Get(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, c.calls.Load())

	c.succeed()
	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, v)
}

func TestLoaderInvalidate(t *testing.T) {
	c := &counter{}
	l := cache.New("test", c.load, cache.Options{})
	ctx := context.Background()

	l.Invalidate() // no snapshot yet

	v, err := l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	l.Invalidate()
	peeked, _, ok := l.Peek()
	require.True(t, ok)
	require.Equal(t, 1, peeked)

	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v)
}

func TestLoaderInvalidateDuringLoad(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	l := cache.New("swapping", func(context.Context) (int, error) {
		n := calls.Add(1)
		if n == 1 {
			started <- struct{}{}
			<-release
		}

		return int(n), nil
	}, cache.Options{TTL: time.Hour})
	ctx := context.Background()

	done := make(chan int)
	go func() {
		v, err := l.Get(ctx)
		require.NoError(t, err)
		done <- v
	}()

	<-started
	// the sources are replaced while the first load reads them
	l.Invalidate()
	close(release)
	require.Equal(t, 1, <-done)

	v, err := l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v, "a load overlapping Invalidate must not be served as fresh")

	v, err = l.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.EqualValues(t, 2, calls.Load())
}

func TestLoaderSharesConcurrentLoads(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	l := cache.New("slow", func(context.Context) (string, error) {
		calls.Add(1)
		<-release

		return "loaded", nil
	}, cache.Options{TTL: time.Hour})

	const callers = 16
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get(context.Background())
			require.NoError(t, err)
			results[i] = v
		}()
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		require.Equal(t, "loaded", r)
	}
}

func TestLoaderCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	l := cache.New("slow", func(ctx context.Context) (int, error) {
		<-release

		return 7, ctx.Err()
	}, cache.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Get(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The load itself is not bound to the cancelled caller.
	close(release)
	v, err := l.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, v)
}

func TestLoaderOnLoadHook(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	c := &counter{}
	l := cache.New("hooked", c.load, cache.Options{
		OnLoad: func(_ context.Context, name string, _ time.Duration, err error) {
			mu.Lock()
			defer mu.Unlock()
			require.Equal(t, "hooked", name)
			errs = append(errs, err)
		},
	})

	_, err := l.Get(context.Background())
	require.NoError(t, err)
	l.Invalidate()
	boom := errors.New("boom")
	c.fail(boom)
	_, err = l.Get(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []error{nil, boom}, errs)
}
