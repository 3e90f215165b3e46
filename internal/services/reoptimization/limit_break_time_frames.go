package reoptimization

import (
	"context"
	"route-optimization-service/internal/domain"
)

// limitBreakTimeFrames splits the slack of the breaks so the solver can no
// longer stack them: the first break moves towards the morning, the second
// towards the afternoon and lunch towards the middle of its window.
type limitBreakTimeFrames struct {
	solver
}

func (limitBreakTimeFrames) name() string { return ActionLimitBreakTimeFrames.String() }
func (limitBreakTimeFrames) maxAttempts() int { return 2 }

func (s limitBreakTimeFrames) attempt(
	ctx context.Context,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	breaks := route.RegularBreaks()

	if len(breaks) > 0 {
		w := breaks[0].ExpectedArrival()
		if !w.IsZero() {
			narrowArrival(breaks[0], w.Start, w.End.Add(-w.Duration()/2))
		}
	}

	if lunches := route.Lunches(); len(lunches) > 0 {
		w := lunches[0].ExpectedArrival()
		if !w.IsZero() {
			quarter := w.Duration() / 4
			narrowArrival(lunches[0], w.Start.Add(quarter), w.End.Add(-quarter))
		}
	}

	if len(breaks) > 1 {
		w := breaks[1].ExpectedArrival()
		if !w.IsZero() {
			narrowArrival(breaks[1], w.Start.Add(w.Duration()/2), w.End)
		}
	}

	RemoveInconsistentBreaks(route)

	return s.solve(ctx, route, engine)
}
