// Package scheduler runs named background jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks. The context is
// cancelled when the scheduler stops.
type TaskFn func(ctx context.Context) error

// TaskStatus reports the last outcome of a registered task.
type TaskStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	LastRun   time.Time     `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Scheduler manages periodic and delayed tasks.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	timers  map[string]*time.Timer
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type tickerEntry struct {
	fn     TaskFn
	status TaskStatus
	runMu  sync.Mutex
	stopCh chan struct{}
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		timers:  make(map[string]*time.Timer),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddTicker registers a task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		close(old.stopCh)
		delete(s.tickers, name)
	}

	entry := &tickerEntry{
		fn:     fn,
		status: TaskStatus{Name: name, Interval: interval},
		stopCh: make(chan struct{}),
	}
	s.tickers[name] = entry

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.run(s.ctx, entry)
			case <-entry.stopCh:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

// AddDelay runs the named ticker task once after the given delay.
func (s *Scheduler) AddDelay(name string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[name]; ok {
		old.Stop()
	}
	s.timers[name] = time.AfterFunc(delay, func() {
		defer func() {
			s.mu.Lock()
			delete(s.timers, name)
			s.mu.Unlock()
		}()
		if err := s.RunNow(s.ctx, name); err != nil {
			s.logger.Warn("delayed task failed", zap.String("task", name), zap.Error(err))
		}
	})
}

// RunNow runs a registered task synchronously and returns its error. Runs
// of the same task never overlap.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	entry, ok := s.tickers[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown task %q", name)
	}
	return s.run(ctx, entry)
}

func (s *Scheduler) run(ctx context.Context, entry *tickerEntry) (err error) {
	entry.runMu.Lock()
	defer entry.runMu.Unlock()

	name := entry.status.Name
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
			err = fmt.Errorf("scheduler: task %q panicked: %v", name, r)
		}
		s.mu.Lock()
		entry.status.Runs++
		entry.status.LastRun = start
		entry.status.LastError = ""
		if err != nil {
			entry.status.LastError = err.Error()
		}
		s.mu.Unlock()
	}()

	err = entry.fn(ctx)
	if err != nil {
		s.logger.Error("scheduler task failed", zap.String("task", name), zap.Error(err))
	} else {
		s.logger.Debug("scheduler task done", zap.String("task", name), zap.Duration("took", time.Since(start)))
	}
	return err
}

// Remove stops and removes a ticker or delay task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.tickers[name]; ok {
		close(entry.stopCh)
		delete(s.tickers, name)
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Stop cancels running tasks and waits for the ticker goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// List returns the status of every registered ticker task, by name.
func (s *Scheduler) List() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskStatus, 0, len(s.tickers))
	for _, e := range s.tickers {
		out = append(out, e.status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
