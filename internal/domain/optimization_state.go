package domain

import "time"

// Identifies which external vehicle-routing solver re-solves a route.
type OptimizationEngine string

const (
	EngineGoogle OptimizationEngine = "GOOGLE"
	EngineVroom  OptimizationEngine = "VROOM"
)

type Office struct {
	ID       int
	Name     string
	Timezone string
}

// The solved set of routes for one office and one day.
// It is the unit of work passed through the post-optimization handlers.
type OptimizationState struct {
	ID                     int
	Office                 Office
	Date                   time.Time
	Engine                 OptimizationEngine
	Routes                 []*Route
	UnassignedAppointments []*Appointment
}
