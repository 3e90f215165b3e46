package reoptimization

import (
	"context"
	"route-optimization-service/internal/domain"
	"time"
)

// reverseRoute moves the last whole-day appointment to the morning so the
// solver builds the day in the opposite direction.
type reverseRoute struct {
	solver
}

func (reverseRoute) name() string { return ActionReverseRoute.String() }
func (reverseRoute) maxAttempts() int { return 1 }

func (s reverseRoute) attempt(
	ctx context.Context,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	appointments := route.Appointments()
	for i := len(appointments) - 1; i >= 0; i-- {
		a := appointments[i]
		if !a.IsWholeDay() {
			continue
		}
		dayStart := domain.StartOfDay(a.ExpectedArrival().Start)
		narrowArrival(a, dayStart, dayStart.Add(12*time.Hour))
		return s.solve(ctx, route, engine)
	}
	return route, nil
}
