// Package scheduler runs the panel's background jobs: the online-user
// poller and the supporter expiry sweep.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is one run of a periodic job. ctx is cancelled on Stop.
type TaskFn func(ctx context.Context)

// Scheduler runs named tasks on fixed intervals.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

type task struct {
	stop chan struct{}
	done chan struct{}
}

// New creates a Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// AddTicker registers fn to run every interval. When immediate is set the
// first run happens right away instead of after one interval. A task with
// the same name is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, immediate bool, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if interval <= 0 {
		s.logger.Warn("scheduler task not registered: interval must be positive", zap.String("name", name))
		return
	}
	if old, ok := s.tasks[name]; ok {
		close(old.stop)
		delete(s.tasks, name)
	}

	t := &task{stop: make(chan struct{}), done: make(chan struct{})}
	s.tasks[name] = t
	s.wg.Add(1)
	go s.loop(name, interval, immediate, fn, t)
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) loop(name string, interval time.Duration, immediate bool, fn TaskFn, t *task) {
	defer s.wg.Done()
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if immediate {
		s.run(name, fn)
	}
	for {
		select {
		case <-ticker.C:
			s.run(name, fn)
		case <-t.stop:
			return
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) run(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn(s.ctx)
}

// Stop cancels every task and waits for running jobs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.cancel()
	s.tasks = make(map[string]*task)
	s.mu.Unlock()
	s.wg.Wait()
}

// Tasks returns the registered task names, sorted.
func (s *Scheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
