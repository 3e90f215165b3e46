package reoptimization

import (
	"context"
	"route-optimization-service/internal/domain"
)

// reduceWorkTimeRange shortens the working window by half of the time the
// service pro would spend waiting, forcing the solver to compact the day.
type reduceWorkTimeRange struct {
	solver
}

func (reduceWorkTimeRange) name() string { return ActionReduceWorkTimeRange.String() }
func (reduceWorkTimeRange) maxAttempts() int { return 1 }

func (s reduceWorkTimeRange) attempt(
	ctx context.Context,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	// Reserved time pins the day's layout; shrinking around it is not safe.
	if len(route.ReservedTimes()) > 0 {
		return route, nil
	}

	end := route.TimeWindow.End.Add(-route.TotalWaitingTime() / 2)
	if err := route.SetTimeWindow(route.TimeWindow.Start, end); err != nil {
		return route, nil
	}

	RemoveInconsistentBreaks(route)

	return s.solve(ctx, route, engine)
}
