// Package testutil provides route fixtures and stub collaborators for tests.
package testutil

import (
	"route-optimization-service/internal/domain"
	"time"
)

// Day is the service date used by fixtures.
var Day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// At returns the fixture day at hh:mm.
func At(h, m int) time.Time {
	return Day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func Window(start, end time.Time) domain.TimeWindow {
	return domain.TimeWindow{Start: start, End: end}
}

// RouteBuilder lays work events back to back starting at the route's start.
type RouteBuilder struct {
	route  *domain.Route
	cursor time.Time
	nextID int
}

// NewRouteBuilder starts an 08:00-18:00 route on Day.
func NewRouteBuilder(routeID int) *RouteBuilder {
	start, end := At(8, 0), At(18, 0)
	return &RouteBuilder{
		route: &domain.Route{
			ID:         routeID,
			OfficeID:   1,
			Date:       Day,
			Type:       domain.RouteTypeRegular,
			Capacity:   16,
			TimeWindow: Window(start, end),
			ServicePro: domain.ServicePro{ID: routeID, Name: "Service Pro", WorkingHours: Window(start, end)},
		},
		cursor: start,
		nextID: routeID * 100,
	}
}

func (b *RouteBuilder) base(d time.Duration) domain.EventBase {
	b.nextID++
	e := domain.EventBase{EventID: b.nextID, Window: Window(b.cursor, b.cursor.Add(d))}
	b.cursor = b.cursor.Add(d)
	return e
}

func (b *RouteBuilder) Start() *RouteBuilder {
	b.route.AddWorkEvent(&domain.StartLocation{EventBase: b.base(0)})
	return b
}

func (b *RouteBuilder) End() *RouteBuilder {
	b.route.AddWorkEvent(&domain.EndLocation{EventBase: b.base(0)})
	return b
}

func (b *RouteBuilder) Travel(d time.Duration, meters float64) *RouteBuilder {
	b.route.AddWorkEvent(&domain.Travel{EventBase: b.base(d), Distance: domain.Distance(meters)})
	return b
}

func (b *RouteBuilder) Waiting(d time.Duration) *RouteBuilder {
	b.route.AddWorkEvent(&domain.Waiting{EventBase: b.base(d)})
	return b
}

func (b *RouteBuilder) Appointment(d time.Duration) *RouteBuilder {
	return b.AppointmentArriving(d, domain.TimeWindow{})
}

// AppointmentArriving adds an appointment constrained to the given arrival window.
func (b *RouteBuilder) AppointmentArriving(d time.Duration, arrival domain.TimeWindow) *RouteBuilder {
	base := b.base(d)
	base.Arrival = arrival
	b.route.AddWorkEvent(&domain.Appointment{
		EventBase:       base,
		MinimumDuration: d,
		MaximumDuration: d,
		OptimalDuration: d,
	})
	return b
}

// Break adds a regular break whose expected arrival equals its scheduled window
// widened by the given slack on both sides.
func (b *RouteBuilder) Break(d, slack time.Duration) *RouteBuilder {
	base := b.base(d)
	base.Arrival = Window(base.Window.Start.Add(-slack), base.Window.Start.Add(slack))
	b.route.AddWorkEvent(&domain.WorkBreak{EventBase: base, MinDuration: d})
	return b
}

func (b *RouteBuilder) Lunch(d, slack time.Duration) *RouteBuilder {
	base := b.base(d)
	base.Arrival = Window(base.Window.Start.Add(-slack), base.Window.Start.Add(slack))
	b.route.AddWorkEvent(&domain.Lunch{WorkBreak: domain.WorkBreak{EventBase: base, MinDuration: d}})
	return b
}

func (b *RouteBuilder) Reserved(d time.Duration) *RouteBuilder {
	base := b.base(d)
	base.Arrival = base.Window
	b.route.AddWorkEvent(&domain.ReservedTime{EventBase: base})
	return b
}

// Build returns the route. The builder must not be used afterwards.
func (b *RouteBuilder) Build() *domain.Route { return b.route }
