package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/platform/logging"
)

type FetchStatus string

const (
	FetchStatusIdle    FetchStatus = "idle"
	FetchStatusLoading FetchStatus = "loading"
	FetchStatusDone    FetchStatus = "done"
	FetchStatusError   FetchStatus = "error"
)

// FetchSnapshot is an immutable view of the coordinator state. Fixtures
// must not be modified by readers.
type FetchSnapshot struct {
	Status    FetchStatus
	Progress  int
	Message   string
	Count     int
	Date      string
	FromCache bool
	Fixtures  []fixture.Fixture
	UpdatedAt time.Time
}

// DayLoader is the part of FixtureService the coordinator drives.
type DayLoader interface {
	Today(ctx context.Context, progress ProgressFunc) (TodayResult, error)
	Refresh(ctx context.Context, progress ProgressFunc) (TodayResult, error)
}

// FetchCoordinator runs at most one background fetch at a time. One
// goroutine (Run) owns the state; everyone else reads published snapshots
// or subscribes to updates.
type FetchCoordinator struct {
	loader DayLoader
	pool   *ants.Pool
	logger *logging.Logger
	now    func() time.Time

	current  atomic.Pointer[FetchSnapshot]
	inflight atomic.Bool
	events   chan func(FetchSnapshot) FetchSnapshot
	subs     chan subscription
	unsubs   chan chan FetchSnapshot

	baseMu    sync.RWMutex
	base      context.Context
	ready     chan struct{}
	readyOnce sync.Once
}

type subscription struct {
	ch chan FetchSnapshot
}

func NewFetchCoordinator(loader DayLoader, logger *logging.Logger) (*FetchCoordinator, error) {
	if loader == nil {
		return nil, fmt.Errorf("%w: day loader is required", ErrInvalidInput)
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(1, ants.WithNonblocking(true), ants.WithPanicHandler(func(p any) {
		logger.Error("fixture fetch panicked", "panic", fmt.Sprint(p))
	}))
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}

	c := &FetchCoordinator{
		loader: loader,
		pool:   pool,
		logger: logger,
		now:    time.Now,
		events: make(chan func(FetchSnapshot) FetchSnapshot, 64),
		subs:   make(chan subscription),
		unsubs: make(chan chan FetchSnapshot),
		base:   context.Background(),
		ready:  make(chan struct{}),
	}
	c.current.Store(&FetchSnapshot{Status: FetchStatusIdle, Message: "Idle", UpdatedAt: c.now()})
	return c, nil
}

// Run owns the state until ctx is done. Fetches started afterwards inherit
// ctx so shutdown cancels them.
func (c *FetchCoordinator) Run(ctx context.Context) error {
	c.baseMu.Lock()
	c.base = ctx
	c.baseMu.Unlock()
	c.readyOnce.Do(func() { close(c.ready) })

	subscribers := make(map[chan FetchSnapshot]struct{})
	defer func() {
		for ch := range subscribers {
			close(ch)
		}
		c.pool.Release()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case apply := <-c.events:
			next := apply(*c.current.Load())
			next.UpdatedAt = c.now()
			c.current.Store(&next)
			for ch := range subscribers {
				offerLatest(ch, next)
			}
		case sub := <-c.subs:
			subscribers[sub.ch] = struct{}{}
			offerLatest(sub.ch, *c.current.Load())
		case ch := <-c.unsubs:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}
		}
	}
}

// Ready is closed once Run owns the state. Fetches started before that
// are not cancelled on shutdown.
func (c *FetchCoordinator) Ready() <-chan struct{} {
	return c.ready
}

// Snapshot returns the latest published state.
func (c *FetchCoordinator) Snapshot() FetchSnapshot {
	return *c.current.Load()
}

// Busy reports whether a fetch is running.
func (c *FetchCoordinator) Busy() bool {
	return c.inflight.Load()
}

// Subscribe streams snapshots until ctx is done. Slow readers only see the
// most recent snapshot.
func (c *FetchCoordinator) Subscribe(ctx context.Context) <-chan FetchSnapshot {
	ch := make(chan FetchSnapshot, 1)
	select {
	case c.subs <- subscription{ch: ch}:
	case <-ctx.Done():
		close(ch)
		return ch
	}
	go func() {
		<-ctx.Done()
		select {
		case c.unsubs <- ch:
		case <-c.baseDone():
		}
	}()
	return ch
}

// Start launches a background fetch. It returns false when one is already
// running.
func (c *FetchCoordinator) Start() bool {
	return c.submit(c.loader.Today)
}

// Refresh clears the cache and fetches again, unless a fetch is running.
func (c *FetchCoordinator) Refresh() bool {
	return c.submit(c.loader.Refresh)
}

func (c *FetchCoordinator) submit(load func(context.Context, ProgressFunc) (TodayResult, error)) bool {
	if !c.inflight.CompareAndSwap(false, true) {
		c.logger.Info("fixture fetch already in progress")
		return false
	}
	ctx := c.baseContext()
	err := c.pool.Submit(func() {
		defer c.inflight.Store(false)
		c.publish(func(s FetchSnapshot) FetchSnapshot {
			s.Status = FetchStatusLoading
			s.Progress = 0
			s.Message = "Starting..."
			return s
		})

		result, err := load(ctx, func(p FetchProgress) {
			c.publish(func(s FetchSnapshot) FetchSnapshot {
				s.Progress = p.Percent
				s.Message = p.Message
				return s
			})
		})
		c.publish(func(s FetchSnapshot) FetchSnapshot {
			return finishedSnapshot(s, result, err)
		})
	})
	if err != nil {
		c.inflight.Store(false)
	}
	if errors.Is(err, ants.ErrPoolOverload) {
		c.logger.Info("fixture fetch already in progress")
		return false
	}
	if err != nil {
		c.logger.Warn("submit fixture fetch failed", "error", err)
		return false
	}
	return true
}

func finishedSnapshot(s FetchSnapshot, result TodayResult, err error) FetchSnapshot {
	s.Progress = 100
	s.Date = result.Date
	s.FromCache = result.FromCache
	s.Fixtures = result.Fixtures
	s.Count = len(result.Fixtures)
	switch {
	case err != nil:
		s.Status = FetchStatusError
		s.Message = MessageNoConnectivity
	case result.Empty():
		s.Status = FetchStatusError
		s.Message = result.Message
	case result.FromCache:
		s.Status = FetchStatusDone
		s.Message = fmt.Sprintf("Loaded %d fixtures from cache", s.Count)
	default:
		s.Status = FetchStatusDone
		s.Message = fmt.Sprintf("Loaded %d fixtures", s.Count)
	}
	return s
}

func (c *FetchCoordinator) publish(apply func(FetchSnapshot) FetchSnapshot) {
	select {
	case c.events <- apply:
	case <-c.baseDone():
	}
}

func (c *FetchCoordinator) baseContext() context.Context {
	c.baseMu.RLock()
	defer c.baseMu.RUnlock()
	return c.base
}

func (c *FetchCoordinator) baseDone() <-chan struct{} {
	return c.baseContext().Done()
}

// offerLatest replaces any unread snapshot with s.
func offerLatest(ch chan FetchSnapshot, s FetchSnapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
