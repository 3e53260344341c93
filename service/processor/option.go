package processor

import (
	"github.com/viant/reframe/service/messaging"
	"go.uber.org/zap"
)

// Option customises the processor
type Option func(*Service)

// WithMessageQueue sets the job queue implementation
func WithMessageQueue(queue messaging.Queue[Job]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithHandler sets the callback receiving every final outcome; it is called
// from worker goroutines
func WithHandler(handler func(outcome *Outcome)) Option {
	return func(s *Service) {
		s.handler = handler
	}
}

// WithLogger sets the processor logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
