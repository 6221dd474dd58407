package fetch

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// limiter bounds concurrent attempts per target host and, optionally,
// overall, and paces attempt starts.
type limiter struct {
	perHost int64

	// global is nil when there is no overall cap.
	global *semaphore.Weighted

	// pace is nil when attempts are not rate limited.
	pace *rate.Limiter

	mu    sync.Mutex
	hosts map[string]*semaphore.Weighted
}

// newLimiter creates a limiter. globalLimit 0 and rps 0 mean unlimited.
func newLimiter(perHostLimit, globalLimit int, rps float64) *limiter {
	l := &limiter{
		perHost: int64(max(perHostLimit, 1)),
		hosts:   make(map[string]*semaphore.Weighted),
	}
	if globalLimit > 0 {
		l.global = semaphore.NewWeighted(int64(globalLimit))
	}
	if rps > 0 {
		l.pace = rate.NewLimiter(rate.Limit(rps), int(math.Max(1, rps)))
	}
	return l
}

// hostSemaphore returns the semaphore for host, creating it on first use.
func (l *limiter) hostSemaphore(host string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.hosts[host]
	if !ok {
		sem = semaphore.NewWeighted(l.perHost)
		l.hosts[host] = sem
	}
	return sem
}

// acquire blocks until an attempt against host may start. The returned
// function releases the slots and must be called exactly once.
// The host slot is taken before the global one so that a busy host never
// holds global slots while it waits.
func (l *limiter) acquire(ctx context.Context, host string) (func(), error) {
	if l.pace != nil {
		if err := l.pace.Wait(ctx); err != nil {
			return nil, err
		}
	}

	hostSem := l.hostSemaphore(host)
	if err := hostSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if l.global != nil {
		if err := l.global.Acquire(ctx, 1); err != nil {
			hostSem.Release(1)
			return nil, err
		}
	}

	return func() {
		if l.global != nil {
			l.global.Release(1)
		}
		hostSem.Release(1)
	}, nil
}
