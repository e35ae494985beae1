package logger

import (
	"sync"
	"time"
)

// StepTracker logs the stages of one export pipeline run (collect, layout,
// charts, serialize) with elapsed timings. Each export request gets its own
// tracker; there is no shared state between requests.
type StepTracker struct {
	logger    Logger
	operation string
	total     int
	completed int
	startTime time.Time
	stepStart time.Time
	current   string
	mutex     sync.Mutex
}

// NewStepTracker creates a tracker for an operation with a known step count
func NewStepTracker(log Logger, operation string, total int) *StepTracker {
	if log == nil {
		log = GetGlobalLogger()
	}

	tracker := &StepTracker{
		logger:    log.WithComponent("pipeline"),
		operation: operation,
		total:     total,
		startTime: time.Now(),
		stepStart: time.Now(),
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"steps":     total,
	}).Info("Starting operation")

	return tracker
}

// Step marks the beginning of a named step, closing out the previous one
func (s *StepTracker) Step(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	if s.current != "" {
		s.completed++
		s.logger.WithFields(Fields{
			"operation": s.operation,
			"step":      s.current,
			"elapsed":   now.Sub(s.stepStart).String(),
		}).Debug("Step completed")
	}

	s.current = name
	s.stepStart = now
	s.logger.WithFields(Fields{
		"operation": s.operation,
		"step":      name,
		"progress":  s.progressLocked(),
	}).Info("Starting step")
}

// Complete marks the operation as finished and logs total elapsed time
func (s *StepTracker) Complete() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current != "" {
		s.completed++
		s.current = ""
	}

	s.logger.WithFields(Fields{
		"operation": s.operation,
		"steps":     s.completed,
		"duration":  time.Since(s.startTime).String(),
	}).Info("Operation completed")
}

// CompleteWithError marks the operation as finished with an error
func (s *StepTracker) CompleteWithError(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.logger.WithError(err).WithFields(Fields{
		"operation": s.operation,
		"step":      s.current,
		"duration":  time.Since(s.startTime).String(),
	}).Error("Operation failed")
}

func (s *StepTracker) progressLocked() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.completed) / float64(s.total) * 100
}
