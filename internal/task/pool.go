package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/insightlens/insightlens/internal/pkg/errors"
)

// Task is a unit of background work with a name for the logs.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pool runs tasks on a fixed set of workers behind a bounded queue.
// Submit never blocks; when the queue is full the caller gets
// ErrQueueFull and decides what to surface.
type Pool struct {
	queue   chan Task
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	started sync.Once
	stopped sync.Once
	workers int
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queue:   make(chan Task, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		workers: workers,
	}
}

func (p *Pool) Start() {
	p.started.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

func (p *Pool) Submit(task Task) error {
	if task.Run == nil {
		return fmt.Errorf("task run func is required")
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return fmt.Errorf("%w: task queue is full", appErr.ErrQueueFull)
	}
}

// Stop drains the queue: already-submitted tasks still run, new submits
// after close will panic, so Stop must come after the accepting side is
// shut down.
func (p *Pool) Stop() {
	p.stopped.Do(func() {
		close(p.queue)
		p.wg.Wait()
		p.cancel()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.queue {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	logger := logutil.GetLogger(p.ctx).With(zap.String("task", task.Name))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", zap.Any("panic", r))
		}
	}()
	start := time.Now()
	err := task.Run(p.ctx)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("task finished", zap.Error(err), zap.Duration("duration", elapsed))
		return
	}
	logger.Info("task finished", zap.Duration("duration", elapsed))
}
