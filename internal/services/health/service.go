// Package health reports liveness and readiness of the API's dependencies.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 3 * time.Second

// Check probes one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

// Report is the outcome of a readiness probe. Checks maps each check name to
// "ok" or its error message.
type Report struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Service encapsulates health-related checks.
type Service struct {
	Checks  []Check
	Timeout time.Duration
}

// NewService constructs a new health service.
func NewService(checks ...Check) *Service {
	return &Service{Checks: checks}
}

// Status returns a simple health payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready runs every check concurrently and waits for all of them.
func (s *Service) Ready(ctx context.Context) Report {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(s.Checks))
	)
	var g errgroup.Group
	for _, check := range s.Checks {
		check := check
		g.Go(func() error {
			err := check.Probe(ctx)
			status := "ok"
			if err != nil {
				status = err.Error()
			}
			mu.Lock()
			results[check.Name] = status
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	return Report{Ready: err == nil, Checks: results}
}
