package domain

import "time"

// Immutable snapshot of derived facts about a route, consumed by metric calculators.
type RouteStats struct {
	AverageDriveDistanceBetweenServices Distance
	AverageDriveTimeBetweenServices     time.Duration
	TotalDriveDistance                  Distance
	TotalDriveTime                      time.Duration
	TotalWorkingTime                    time.Duration
	TotalServiceTime                    time.Duration
	TotalAppointments                   int
	TotalWeightedServices               int
}

// CalculateRouteStats derives stats from a solved route.
//
// Working time spans from the start location to the end location when both
// are present, and falls back to the route's working window otherwise.
func CalculateRouteStats(r *Route) RouteStats {
	var stats RouteStats

	travels := r.Travels()
	for _, t := range travels {
		stats.TotalDriveDistance += t.Distance
		stats.TotalDriveTime += t.Duration()
	}
	if n := len(travels); n > 0 {
		stats.AverageDriveDistanceBetweenServices = stats.TotalDriveDistance / Distance(n)
		stats.AverageDriveTimeBetweenServices = stats.TotalDriveTime / time.Duration(n)
	}

	for _, a := range r.Appointments() {
		stats.TotalAppointments++
		stats.TotalWeightedServices += a.WeightedServices()
		stats.TotalServiceTime += a.Duration()
	}

	span := r.TimeWindow
	start, end := r.StartLocation(), r.EndLocation()
	if start != nil && end != nil {
		span = TimeWindow{Start: start.TimeWindow().Start, End: end.TimeWindow().End}
	}
	if span.End.After(span.Start) {
		stats.TotalWorkingTime = span.Duration()
	}

	return stats
}
