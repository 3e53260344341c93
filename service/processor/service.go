package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/runtime/orchestrator"
	"github.com/viant/reframe/service/messaging"
	"github.com/viant/reframe/service/messaging/memory"
	"github.com/viant/reframe/tracing"
	"go.uber.org/zap"
)

// Config represents processor configuration
type Config struct {
	// WorkerCount is the number of workers running requests
	WorkerCount int

	// MaxRetries is the maximum number of redeliveries of a timed out request
	MaxRetries int

	// RetryDelay is the delay before a timed out request is redelivered
	RetryDelay time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5,
		MaxRetries:  1,
		RetryDelay:  100 * time.Millisecond,
	}
}

// Runner executes a single request
type Runner interface {
	Run(ctx context.Context, request *orchestrator.Request) (*orchestrator.Result, error)
}

// Job is a queued request
type Job struct {
	Index    int
	Request  *orchestrator.Request
	Attempts int
}

// Outcome is the final result of a job
type Outcome struct {
	Index    int
	Attempts int
	Result   *orchestrator.Result
	Err      error
}

// Service runs queued requests on a worker pool
type Service struct {
	config  Config
	runner  Runner
	queue   messaging.Queue[Job]
	handler func(outcome *Outcome)
	logger  *zap.Logger

	workers  []*worker
	workerWg sync.WaitGroup
	pending  sync.WaitGroup
	started  bool
	mux      sync.Mutex
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a processor; without a queue option an in-memory queue sized
// for the retry settings is used
func New(runner Runner, options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig(), runner: runner, logger: zap.NewNop()}
	for _, opt := range options {
		opt(s)
	}
	if s.runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if s.config.WorkerCount <= 0 {
		s.config.WorkerCount = 1
	}
	if s.queue == nil {
		s.queue = memory.NewQueue[Job](memory.Config{
			MaxRetries: s.config.MaxRetries,
			RetryDelay: s.config.RetryDelay,
			DeadLetter: true,
		})
	}
	return s, nil
}

// Start launches the workers
func (s *Service) Start(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.started {
		return fmt.Errorf("processor already started")
	}
	s.started = true
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{id: i, service: s, ctx: workerCtx, cancelFn: cancel}
		s.workers = append(s.workers, w)
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// Submit queues a request; index is carried into its outcome
func (s *Service) Submit(ctx context.Context, index int, request *orchestrator.Request) error {
	s.pending.Add(1)
	if err := s.queue.Publish(ctx, &Job{Index: index, Request: request}); err != nil {
		s.pending.Done()
		return fmt.Errorf("failed to submit request %d: %w", index, err)
	}
	return nil
}

// Wait blocks until every submitted request has a final outcome or ctx is done
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the workers and closes the queue
func (s *Service) Shutdown() {
	for _, w := range s.workers {
		w.cancelFn()
	}
	_ = s.queue.Close()
	s.workerWg.Wait()
}

func (w *worker) run() {
	defer w.service.workerWg.Done()
	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, messaging.ErrClosed) {
				return
			}
			w.service.logger.Warn("consume failed", zap.Int("worker", w.id), zap.Error(err))
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		if err = w.service.processMessage(w.ctx, msg); err != nil {
			w.service.logger.Error("failed to process job", zap.Int("worker", w.id), zap.String("message", msg.ID()), zap.Error(err))
		}
	}
}

// processMessage runs a job; timed out requests are nacked for redelivery
func (s *Service) processMessage(ctx context.Context, message messaging.Message[Job]) (err error) {
	job := message.T()
	job.Attempts++
	ctx, span := tracing.Start(ctx, "processor.job", tracing.KeyAttempt.Int(job.Attempts))
	result, runErr := s.runner.Run(ctx, job.Request)
	span.End(runErr)
	if errors.Is(runErr, types.ErrTimeout) && job.Attempts <= s.config.MaxRetries && ctx.Err() == nil {
		s.logger.Info("request timed out, retrying", zap.Int("index", job.Index), zap.Int("attempt", job.Attempts))
		return message.Nack(runErr)
	}
	defer s.pending.Done()
	if s.handler != nil {
		s.handler(&Outcome{Index: job.Index, Attempts: job.Attempts, Result: result, Err: runErr})
	}
	return message.Ack()
}
