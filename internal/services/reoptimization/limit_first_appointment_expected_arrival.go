package reoptimization

import (
	"context"
	"route-optimization-service/internal/domain"
)

// limitFirstAppointmentExpectedArrival pulls the first appointment to the
// start of the day: it must be reachable right after the first drive.
type limitFirstAppointmentExpectedArrival struct {
	solver
}

func (limitFirstAppointmentExpectedArrival) name() string {
	return ActionLimitFirstAppointmentExpectedArrival.String()
}

func (limitFirstAppointmentExpectedArrival) maxAttempts() int { return 1 }

func (s limitFirstAppointmentExpectedArrival) attempt(
	ctx context.Context,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	appointments := route.Appointments()
	if len(appointments) == 0 {
		return route, nil
	}
	first := appointments[0]

	workStart := route.ServicePro.WorkingHours.Start
	if workStart.IsZero() {
		workStart = route.TimeWindow.Start
	}

	var firstTravel domain.WorkEvent
	if travels := route.Travels(); len(travels) > 0 {
		firstTravel = travels[0]
	}

	earliest := domain.StartOfDay(workStart)
	latest := workStart.Add(first.Duration())
	if firstTravel != nil {
		latest = latest.Add(firstTravel.Duration())
	}

	// Nothing to gain when the window already sits inside the range, and
	// nothing feasible when the customer cannot be visited that early.
	current := first.ExpectedArrival()
	if !current.IsZero() {
		inside := !current.Start.Before(earliest) && !current.End.After(latest)
		if inside || current.Start.After(latest) {
			return route, nil
		}
	}

	narrowArrival(first, earliest, latest)

	return s.solve(ctx, route, engine)
}
