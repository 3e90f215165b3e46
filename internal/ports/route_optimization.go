package ports

import (
	"context"
	"errors"
	"route-optimization-service/internal/domain"
)

var (
	ErrUnknownEngine     = errors.New("unknown optimization engine")
	ErrSolverUnavailable = errors.New("solver unavailable")
)

// Contract for the external vehicle-routing solver.
type RouteOptimizationService interface {
	// Re-solve a single route under its current constraints and return the new schedule.
	OptimizeSingleRoute(ctx context.Context, route *domain.Route) (*domain.Route, error)
}

// Resolves the solver client for an optimization engine.
type RouteOptimizationServiceFactory interface {
	// Return the solver for engine, or an error wrapping ErrUnknownEngine.
	ServiceFor(engine domain.OptimizationEngine) (RouteOptimizationService, error)
}
