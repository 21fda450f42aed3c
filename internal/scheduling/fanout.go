package scheduling

import (
	"sync"

	"recruiting-service/prometheus"

	"go.uber.org/zap"
)

// SideChannel runs best-effort notification work off the request path.
// Failures and panics are logged with context and never reach the caller;
// the scheduling mutation has already committed by the time a task runs.
type SideChannel struct {
	log *zap.Logger
	wg  sync.WaitGroup
}

func NewSideChannel(log *zap.Logger) *SideChannel {
	return &SideChannel{log: log}
}

// Go dispatches fn asynchronously. The name labels the task in logs.
func (s *SideChannel) Go(name string, fn func() error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				prometheus.RecordSideChannelFailure(name)
				s.log.Error("side channel task panicked",
					zap.String("task", name),
					zap.Any("panic", r))
			}
		}()
		if err := fn(); err != nil {
			prometheus.RecordSideChannelFailure(name)
			s.log.Warn("side channel task failed",
				zap.String("task", name),
				zap.Error(err))
		}
	}()
}

// Wait blocks until all dispatched tasks finish. Used on shutdown and in
// tests; request handlers never call it.
func (s *SideChannel) Wait() {
	s.wg.Wait()
}
