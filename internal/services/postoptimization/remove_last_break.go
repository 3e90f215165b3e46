package postoptimization

import (
	"context"
	"route-optimization-service/internal/domain"
)

// RemoveLastBreak drops regular breaks left after a route's last appointment.
type RemoveLastBreak struct{}

func (RemoveLastBreak) Name() string { return "remove_last_break" }

func (h RemoveLastBreak) Process(ctx context.Context, state *domain.OptimizationState) error {
	for _, route := range state.Routes {
		h.processRoute(route)
	}
	return nil
}

func (RemoveLastBreak) processRoute(route *domain.Route) {
	for {
		var last domain.WorkEvent
		for _, e := range route.WorkEvents() {
			switch e.(type) {
			case *domain.Appointment, *domain.WorkBreak:
				last = e
			}
		}

		if _, ok := last.(*domain.WorkBreak); !ok {
			return
		}
		route.RemoveWorkEvent(last)
	}
}
