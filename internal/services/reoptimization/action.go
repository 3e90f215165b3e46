// Package reoptimization adjusts a route's constraints and re-solves it with the
// external solver, keeping the result only when it is not worse than before.
//
// Each action counts its attempts per route id and becomes a no-op once a route
// has used them up. Counters live as long as the action, so a Factory must be
// scoped to a single optimization run.
package reoptimization

import (
	"context"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
)

type Action interface {
	Name() string
	Process(ctx context.Context, route *domain.Route, engine domain.OptimizationEngine) (*domain.Route, error)
}

// strategy is the part of an action that differs between corrective measures.
type strategy interface {
	name() string
	maxAttempts() int
	// attempt may mutate route constraints; it returns the route the solver produced
	// or the route itself when there was nothing to change.
	attempt(ctx context.Context, route *domain.Route, engine domain.OptimizationEngine) (*domain.Route, error)
}

// action wraps a strategy with the per-route attempt bound and the non-regression check.
type action struct {
	strategy strategy
	attempts map[int]int
	logger   *slog.Logger
	recorder ports.AttemptRecorder
}

func newAction(s strategy, logger *slog.Logger, recorder ports.AttemptRecorder) *action {
	return &action{
		strategy: s,
		attempts: make(map[int]int),
		logger:   logger,
		recorder: recorder,
	}
}

func (a *action) Name() string { return a.strategy.name() }

func (a *action) Process(
	ctx context.Context,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	used := a.attempts[route.ID]
	if used >= a.strategy.maxAttempts() {
		a.recorder.RecordAttempt(a.Name(), ports.OutcomeExhausted)
		return route, nil
	}
	a.attempts[route.ID] = used + 1

	// Earlier attempts compare against the route as the strategy leaves it;
	// the last one keeps an untouched copy to fall back to.
	baseline := route
	if used+1 == a.strategy.maxAttempts() {
		baseline = route.Clone()
	}

	reoptimized, err := a.strategy.attempt(ctx, route, engine)
	if err != nil {
		return nil, fmt.Errorf("%s: route %d: %w", a.Name(), route.ID, err)
	}

	// Strategies hand back the input route when they had nothing to adjust.
	// There is no candidate to compare, so this is not a failed reoptimization.
	if reoptimized == route {
		a.recorder.RecordAttempt(a.Name(), ports.OutcomeUnchanged)
		return route, nil
	}

	if isNotWorse(reoptimized, baseline) {
		a.recorder.RecordAttempt(a.Name(), ports.OutcomeAccepted)
		return reoptimized, nil
	}

	a.logger.Info("reoptimization failed",
		"route_id", route.ID,
		"office_id", route.OfficeID,
		"rule", a.Name(),
		"date", route.Date.Format("2006-01-02"),
		"appointments_before", len(baseline.Appointments()),
		"appointments_after", len(reoptimized.Appointments()),
	)
	a.recorder.RecordAttempt(a.Name(), ports.OutcomeRejected)
	return baseline, nil
}

// A reoptimized route is acceptable when it keeps every appointment and
// finishes no later than the baseline's working window.
func isNotWorse(reoptimized, baseline *domain.Route) bool {
	if len(reoptimized.Appointments()) < len(baseline.Appointments()) {
		return false
	}
	return !reoptimized.EndAt().After(baseline.TimeWindow.End)
}

// solver resolves the engine's client and re-solves a route.
type solver struct {
	services ports.RouteOptimizationServiceFactory
}

func (s solver) solve(ctx context.Context, route *domain.Route, engine domain.OptimizationEngine) (*domain.Route, error) {
	svc, err := s.services.ServiceFor(engine)
	if err != nil {
		return nil, fmt.Errorf("resolve solver: %w", err)
	}
	solved, err := svc.OptimizeSingleRoute(ctx, route)
	if err != nil {
		return nil, fmt.Errorf("optimize route: %w", err)
	}
	return solved, nil
}
