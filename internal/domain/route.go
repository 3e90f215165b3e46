package domain

import (
	"fmt"
	"slices"
	"time"
)

type RouteType string

const (
	RouteTypeRegular       RouteType = "regular"
	RouteTypeShortDay      RouteType = "short_day"
	RouteTypeExtendedRoute RouteType = "extended"
)

// The service professional a route is planned for.
type ServicePro struct {
	ID            int
	Name          string
	Skills        []Skill
	WorkingHours  TimeWindow
	StartLocation Coordinates
	EndLocation   Coordinates
}

// Represents one service professional's work plan for a single day.
//
// Work events are kept ordered by the start of their scheduled time window.
// A Route is mutated in place by post-optimization handlers; callers that need
// a snapshot must Clone it.
type Route struct {
	ID         int
	OfficeID   int
	Date       time.Time
	Type       RouteType
	Capacity   int
	ServicePro ServicePro
	TimeWindow TimeWindow

	events []WorkEvent
}

// WorkEvents returns the ordered work events. The slice is a copy; the events are not.
func (r *Route) WorkEvents() []WorkEvent { return slices.Clone(r.events) }

// AddWorkEvent inserts the event after every event starting at or before it.
func (r *Route) AddWorkEvent(e WorkEvent) {
	start := e.TimeWindow().Start
	i := slices.IndexFunc(r.events, func(x WorkEvent) bool {
		return x.TimeWindow().Start.After(start)
	})
	if i < 0 {
		r.events = append(r.events, e)
		return
	}
	r.events = slices.Insert(r.events, i, e)
}

func (r *Route) AddWorkEvents(events ...WorkEvent) {
	for _, e := range events {
		r.AddWorkEvent(e)
	}
}

// RemoveWorkEvent removes the given event instance. It reports whether the event was found.
func (r *Route) RemoveWorkEvent(e WorkEvent) bool {
	i := slices.Index(r.events, e)
	if i < 0 {
		return false
	}
	r.events = slices.Delete(r.events, i, i+1)
	return true
}

// SetTimeWindow narrows or replaces the route's working window.
func (r *Route) SetTimeWindow(start, end time.Time) error {
	w, err := NewTimeWindow(start, end)
	if err != nil {
		return fmt.Errorf("set route %d time window: %w", r.ID, err)
	}
	r.TimeWindow = w
	return nil
}

func (r *Route) Appointments() []*Appointment { return eventsOf[*Appointment](r.events) }

func (r *Route) Travels() []*Travel { return eventsOf[*Travel](r.events) }

func (r *Route) Waitings() []*Waiting { return eventsOf[*Waiting](r.events) }

func (r *Route) ReservedTimes() []*ReservedTime { return eventsOf[*ReservedTime](r.events) }

func (r *Route) Lunches() []*Lunch { return eventsOf[*Lunch](r.events) }

func (r *Route) ExtraWorks() []*ExtraWork { return eventsOf[*ExtraWork](r.events) }

// RegularBreaks returns the generic breaks, lunch excluded.
func (r *Route) RegularBreaks() []*WorkBreak { return eventsOf[*WorkBreak](r.events) }

// WorkBreaks returns every member of the break family in route order, lunch included.
func (r *Route) WorkBreaks() []*WorkBreak {
	out := make([]*WorkBreak, 0, len(r.events))
	for _, e := range r.events {
		if b, ok := AsBreak(e); ok {
			out = append(out, b)
		}
	}
	return out
}

func (r *Route) HasAppointments() bool {
	return slices.ContainsFunc(r.events, func(e WorkEvent) bool {
		_, ok := e.(*Appointment)
		return ok
	})
}

func (r *Route) StartLocation() *StartLocation {
	if s := eventsOf[*StartLocation](r.events); len(s) > 0 {
		return s[0]
	}
	return nil
}

func (r *Route) EndLocation() *EndLocation {
	if e := eventsOf[*EndLocation](r.events); len(e) > 0 {
		return e[len(e)-1]
	}
	return nil
}

// EndAt is when the route actually finishes: the end location's departure
// window end, or the working window end when the route has no end location.
func (r *Route) EndAt() time.Time {
	if end := r.EndLocation(); end != nil {
		return end.TimeWindow().End
	}
	return r.TimeWindow.End
}

func (r *Route) TotalWaitingTime() time.Duration {
	var total time.Duration
	for _, w := range r.Waitings() {
		total += w.Duration()
	}
	return total
}

// Clone returns a deep copy: every work event is cloned as well.
func (r *Route) Clone() *Route {
	c := *r
	c.ServicePro.Skills = slices.Clone(r.ServicePro.Skills)
	c.events = make([]WorkEvent, 0, len(r.events))
	for _, e := range r.events {
		c.events = append(c.events, e.Clone())
	}
	return &c
}

func eventsOf[T WorkEvent](events []WorkEvent) []T {
	out := make([]T, 0, len(events))
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
