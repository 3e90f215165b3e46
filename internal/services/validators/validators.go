// Package validators holds the route quality rules run after optimization.
package validators

import (
	"route-optimization-service/internal/domain"
	"time"
)

// Validator is a boolean quality rule over a route.
// Validate returns false when the rule is broken; Violation names the broken rule.
type Validator interface {
	Validate(route *domain.Route) bool
	Violation() domain.Violation
}

// Thresholds are tunable per deployment.
type Thresholds struct {
	LongInactivity                   time.Duration
	AverageInactivity                time.Duration
	InactivityBeforeFirstAppointment time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LongInactivity:                   90 * time.Minute,
		AverageInactivity:                30 * time.Minute,
		InactivityBeforeFirstAppointment: 60 * time.Minute,
	}
}

// LongInactivity fails when a single gap between productive events is too long.
type LongInactivity struct {
	Threshold time.Duration
}

func (v LongInactivity) Violation() domain.Violation { return domain.ViolationLongInactivity }

func (v LongInactivity) Validate(route *domain.Route) bool {
	for _, gap := range inactivityGaps(route) {
		if gap > v.Threshold {
			return false
		}
	}
	return true
}

// AverageInactivity fails when the mean gap across the route is too long.
type AverageInactivity struct {
	Threshold time.Duration
}

func (v AverageInactivity) Violation() domain.Violation { return domain.ViolationAverageInactivity }

func (v AverageInactivity) Validate(route *domain.Route) bool {
	gaps := inactivityGaps(route)
	if len(gaps) == 0 {
		return true
	}
	var total time.Duration
	for _, gap := range gaps {
		total += gap
	}
	return total/time.Duration(len(gaps)) <= v.Threshold
}

// TwoBreaksInARow fails when two breaks follow each other with no appointment between them.
type TwoBreaksInARow struct{}

func (TwoBreaksInARow) Violation() domain.Violation { return domain.ViolationTwoBreaksInARow }

func (TwoBreaksInARow) Validate(route *domain.Route) bool {
	previousWasBreak := false
	for _, e := range route.WorkEvents() {
		if _, ok := e.(*domain.Appointment); ok {
			previousWasBreak = false
			continue
		}
		if _, ok := domain.AsBreak(e); ok {
			if previousWasBreak {
				return false
			}
			previousWasBreak = true
		}
	}
	return true
}

// InactivityBeforeFirstAppointment fails when the service pro starts the day
// and waits too long before arriving at the first appointment.
type InactivityBeforeFirstAppointment struct {
	Threshold time.Duration
}

func (v InactivityBeforeFirstAppointment) Violation() domain.Violation {
	return domain.ViolationInactivityBeforeFirstAppointment
}

func (v InactivityBeforeFirstAppointment) Validate(route *domain.Route) bool {
	appointments := route.Appointments()
	if len(appointments) == 0 {
		return true
	}
	routeStart := route.TimeWindow.Start
	if start := route.StartLocation(); start != nil {
		routeStart = start.TimeWindow().Start
	}
	return appointments[0].TimeWindow().Start.Sub(routeStart) <= v.Threshold
}

// inactivityGaps sums travel and waiting between consecutive productive events.
// Start and end locations are not productive; the stretch before the first
// appointment is covered by its own rule.
func inactivityGaps(route *domain.Route) []time.Duration {
	var (
		gaps    []time.Duration
		current time.Duration
		seen    bool
	)
	for _, e := range route.WorkEvents() {
		switch e.Type() {
		case domain.EventTravel, domain.EventWaiting:
			current += e.Duration()
		case domain.EventAppointment, domain.EventBreak, domain.EventLunch, domain.EventReservedTime:
			if seen {
				gaps = append(gaps, current)
			}
			seen = true
			current = 0
		}
	}
	return gaps
}
