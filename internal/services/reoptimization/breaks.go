package reoptimization

import (
	"route-optimization-service/internal/domain"
	"time"
)

// RemoveInconsistentBreaks drops breaks and reserved time that can no longer
// fit before the route's working window ends: either their expected arrival
// reaches past the end, or starting at the earliest arrival they would still
// finish after it.
func RemoveInconsistentBreaks(route *domain.Route) {
	routeEnd := route.TimeWindow.End

	for _, e := range route.WorkEvents() {
		var minimal time.Duration
		if b, ok := domain.AsBreak(e); ok {
			minimal = b.MinimalDuration()
		} else if r, ok := e.(*domain.ReservedTime); ok {
			minimal = r.Duration()
		} else {
			continue
		}

		window := e.ExpectedArrival()
		if window.IsZero() {
			window = e.TimeWindow()
		}

		if window.End.After(routeEnd) || window.Start.Add(minimal).After(routeEnd) {
			route.RemoveWorkEvent(e)
		}
	}
}

// narrowArrival replaces the expected arrival when the new window is valid.
// An invalid window leaves the event untouched.
func narrowArrival(e domain.WorkEvent, start, end time.Time) {
	w, err := domain.NewTimeWindow(start, end)
	if err != nil {
		return
	}
	e.SetExpectedArrival(w)
}
