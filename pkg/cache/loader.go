// Package cache provides a get-or-load cache holding one immutable snapshot
// of a reference dataset. Readers never block on each other: the current
// snapshot is read through an atomic pointer and replaced as a whole once a
// reload has fully completed.
package cache

import (
	"context"
	"densitymap/pkg/logger"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadFunc builds a complete snapshot. It must not return a partially
// populated value together with a nil error.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Options configures a Loader.
type Options struct {
	// TTL is the snapshot lifetime. Zero keeps a snapshot until Invalidate.
	TTL time.Duration
	// Clock replaces time.Now, mainly in tests.
	Clock func() time.Time
	// OnLoad is called after every load attempt.
	OnLoad func(ctx context.Context, name string, took time.Duration, err error)
}

type snapshot[T any] struct {
	value    T
	loadedAt time.Time
	expired  bool
}

// Loader is a get-or-load cache for a single value of type T.
type Loader[T any] struct {
	name  string
	load  LoadFunc[T]
	opts  Options
	snap  atomic.Pointer[snapshot[T]]
	group singleflight.Group
	// gen is bumped by Invalidate. A load started under an older generation
	// may have read sources that were being replaced, so its snapshot is
	// stored already expired.
	gen atomic.Uint64
}

// New creates a Loader. name identifies the cache in logs and metrics.
func New[T any](name string, load LoadFunc[T], opts Options) *Loader[T] {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Loader[T]{name: name, load: load, opts: opts}
}

// Get returns the current snapshot, loading it first when there is none or
// when it has expired. Concurrent callers share a single load. When a
// reload fails while an older snapshot exists, the older snapshot is
// returned and the failure is logged.
func (l *Loader[T]) Get(ctx context.Context) (T, error) {
	current := l.snap.Load()
	if l.fresh(current) {
		return current.value, nil
	}

	ch := l.group.DoChan(l.name, func() (any, error) {
		// Another caller may have completed a load while we were queued.
		if s := l.snap.Load(); l.fresh(s) {
			return s, nil
		}

		return l.reload(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if current != nil {
				logger.Warn(ctx, "cache reload failed, serving stale snapshot",
					zap.String("cache", l.name),
					zap.Time("loadedAt", current.loadedAt),
					zap.Error(res.Err))

				return current.value, nil
			}
			var zero T

			return zero, res.Err
		}

		return res.Val.(*snapshot[T]).value, nil //nolint: forcetypeassert
	}
}

func (l *Loader[T]) reload(ctx context.Context) (*snapshot[T], error) {
	gen := l.gen.Load()
	started := l.opts.Clock()
	value, err := l.load(ctx)
	took := l.opts.Clock().Sub(started)
	if l.opts.OnLoad != nil {
		l.opts.OnLoad(ctx, l.name, took, err)
	}
	if err != nil {
		return nil, err
	}

	s := &snapshot[T]{value: value, loadedAt: l.opts.Clock(), expired: l.gen.Load() != gen}
	l.snap.Store(s)
	// Invalidate may have run between the check above and the store.
	if !s.expired && l.gen.Load() != gen {
		l.expire()
	}
	logger.Debug(ctx, "cache loaded", zap.String("cache", l.name),
		zap.Duration("took", took), zap.Bool("invalidated", s.expired))

	return s, nil
}

// Peek returns the current snapshot without loading, even when expired.
func (l *Loader[T]) Peek() (T, time.Time, bool) {
	s := l.snap.Load()
	if s == nil {
		var zero T

		return zero, time.Time{}, false
	}

	return s.value, s.loadedAt, true
}

// Invalidate marks the current snapshot as expired. It keeps serving as
// the stale fallback until the next successful load replaces it. A load
// running while Invalidate is called does not produce a fresh snapshot.
func (l *Loader[T]) Invalidate() {
	l.gen.Add(1)
	l.expire()
}

func (l *Loader[T]) expire() {
	for {
		old := l.snap.Load()
		if old == nil || old.expired {
			return
		}
		next := *old
		next.expired = true
		if l.snap.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (l *Loader[T]) fresh(s *snapshot[T]) bool {
	if s == nil || s.expired {
		return false
	}
	if l.opts.TTL <= 0 {
		return true
	}

	return l.opts.Clock().Sub(s.loadedAt) < l.opts.TTL
}
