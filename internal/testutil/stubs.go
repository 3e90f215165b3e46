package testutil

import (
	"context"
	"fmt"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"sync"
)

// StubSolver records every route it receives and answers with Respond.
// When Respond is nil it returns a clone of the input route.
type StubSolver struct {
	mu       sync.Mutex
	Respond  func(route *domain.Route) (*domain.Route, error)
	Received []*domain.Route
}

func (s *StubSolver) OptimizeSingleRoute(ctx context.Context, route *domain.Route) (*domain.Route, error) {
	s.mu.Lock()
	s.Received = append(s.Received, route.Clone())
	s.mu.Unlock()

	if s.Respond == nil {
		return route.Clone(), nil
	}
	return s.Respond(route)
}

func (s *StubSolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Received)
}

// StubSolverFactory serves the same stub for every known engine.
type StubSolverFactory struct {
	Solver  *StubSolver
	Engines []domain.OptimizationEngine
}

func NewStubSolverFactory(solver *StubSolver) *StubSolverFactory {
	return &StubSolverFactory{
		Solver:  solver,
		Engines: []domain.OptimizationEngine{domain.EngineGoogle, domain.EngineVroom},
	}
}

func (f *StubSolverFactory) ServiceFor(engine domain.OptimizationEngine) (ports.RouteOptimizationService, error) {
	for _, e := range f.Engines {
		if e == engine {
			return f.Solver, nil
		}
	}
	return nil, fmt.Errorf("stub solver factory: %q: %w", engine, ports.ErrUnknownEngine)
}

// StubFlags enables a flag for the listed offices only.
type StubFlags struct {
	Enabled map[int]map[string]bool
	Err     error
	Lookups int
}

func (f *StubFlags) IsFeatureEnabledForOffice(ctx context.Context, officeID int, flag string) (bool, error) {
	f.Lookups++
	if f.Err != nil {
		return false, f.Err
	}
	return f.Enabled[officeID][flag], nil
}

// RecordingRecorder keeps every recorded outcome in memory.
type RecordingRecorder struct {
	mu         sync.Mutex
	Violations []domain.Violation
	Attempts   map[string][]ports.AttemptOutcome
}

func (r *RecordingRecorder) RecordViolation(v domain.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Violations = append(r.Violations, v)
}

func (r *RecordingRecorder) RecordAttempt(action string, outcome ports.AttemptOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Attempts == nil {
		r.Attempts = make(map[string][]ports.AttemptOutcome)
	}
	r.Attempts[action] = append(r.Attempts[action], outcome)
}
