package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func counter(calls *int32, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestCache_HitAndExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := New[string](time.Minute)
	c.now = clock.Now

	var calls int32
	ctx := context.Background()

	v, err := c.Get(ctx, "k", counter(&calls, "v1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)

	v, err = c.Get(ctx, "k", counter(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "served from cache")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.Advance(2 * time.Minute)

	v, err = c.Get(ctx, "k", counter(&calls, "v2"))
	require.NoError(t, err)
	assert.Equal(t, "v2", v, "expired entry reloaded")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_Invalidate(t *testing.T) {
	c := New[string](time.Hour)
	var calls int32
	ctx := context.Background()

	_, err := c.Get(ctx, "k", counter(&calls, "old"))
	require.NoError(t, err)
	c.Invalidate("k")
	assert.Equal(t, 0, c.Len())

	v, err := c.Get(ctx, "k", counter(&calls, "new"))
	require.NoError(t, err)
	assert.Equal(t, "new", v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c := New[string](time.Hour)
	ctx := context.Background()

	_, err := c.Get(ctx, "k", func(context.Context) (string, error) { return "", assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, c.Len())

	v, err := c.Get(ctx, "k", func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestCache_ZeroTTLDisablesStorage(t *testing.T) {
	c := New[string](0)
	var calls int32
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, "k", counter(&calls, "v"))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentLoadsCollapse(t *testing.T) {
	c := New[string](time.Hour)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const readers = 16
	var started, done sync.WaitGroup
	started.Add(readers)
	done.Add(readers)
	results := make([]string, readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			v, err := c.Get(ctx, "k", load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	started.Wait()
	// Give the readers time to pile up on the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestCache_InvalidateDuringLoadDiscardsStaleValue(t *testing.T) {
	c := New[int](time.Hour)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	staleDone := make(chan int)
	go func() {
		v, err := c.Get(ctx, "k", func(context.Context) (int, error) {
			close(entered)
			<-release
			// Value read before the write landed.
			return 1, nil
		})
		assert.NoError(t, err)
		staleDone <- v
	}()

	<-entered
	// The write happens and invalidates while the old read is still in flight.
	c.Invalidate("k")
	close(release)
	assert.Equal(t, 1, <-staleDone, "in-flight waiters still get their own load")
	assert.Equal(t, 0, c.Len(), "stale load must not be stored")

	v, err := c.Get(ctx, "k", func(context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	v, err = c.Get(ctx, "k", func(context.Context) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v, "fresh value is cached")
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	for _, ttl := range []time.Duration{0, time.Hour} {
		t.Run(ttl.String(), func(t *testing.T) {
			c := New[string](ttl)

			entered := make(chan struct{})
			release := make(chan struct{})
			var enterOnce sync.Once
			var loadErr atomic.Value
			load := func(ctx context.Context) (string, error) {
				enterOnce.Do(func() { close(entered) })
				<-release
				if err := ctx.Err(); err != nil {
					loadErr.Store(err)
					return "", err
				}
				return "value", nil
			}

			firstCtx, cancel := context.WithCancel(context.Background())
			firstErr := make(chan error)
			go func() {
				_, err := c.Get(firstCtx, "k", load)
				firstErr <- err
			}()
			<-entered

			secondDone := make(chan struct{})
			var secondVal string
			var secondErr error
			go func() {
				defer close(secondDone)
				secondVal, secondErr = c.Get(context.Background(), "k", load)
			}()
			// Let the second caller join the in-flight load.
			time.Sleep(20 * time.Millisecond)

			cancel()
			assert.ErrorIs(t, <-firstErr, context.Canceled, "cancelled caller returns promptly")

			close(release)
			<-secondDone
			require.NoError(t, secondErr)
			assert.Equal(t, "value", secondVal)
			assert.Nil(t, loadErr.Load(), "shared load must not see the first caller's cancellation")
		})
	}
}
