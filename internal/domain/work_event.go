package domain

import (
	"slices"
	"time"
)

type WorkEventType string

const (
	EventAppointment   WorkEventType = "appointment"
	EventTravel        WorkEventType = "travel"
	EventWaiting       WorkEventType = "waiting"
	EventBreak         WorkEventType = "break"
	EventLunch         WorkEventType = "lunch"
	EventReservedTime  WorkEventType = "reserved_time"
	EventStartLocation WorkEventType = "start_location"
	EventEndLocation   WorkEventType = "end_location"
	EventExtraWork     WorkEventType = "extra_work"
)

// A typed interval on a route.
//
// TimeWindow is the interval the solver scheduled the event into.
// ExpectedArrival is the constraint handed to the solver; a zero window means unconstrained.
type WorkEvent interface {
	ID() int
	Type() WorkEventType
	Description() string
	TimeWindow() TimeWindow
	SetTimeWindow(TimeWindow)
	ExpectedArrival() TimeWindow
	SetExpectedArrival(TimeWindow)
	Duration() time.Duration
	Clone() WorkEvent
}

// EventBase carries the fields shared by every work event variant.
type EventBase struct {
	EventID int
	Label   string
	Window  TimeWindow
	Arrival TimeWindow
}

func (e *EventBase) ID() int { return e.EventID }
func (e *EventBase) Description() string { return e.Label }
func (e *EventBase) TimeWindow() TimeWindow { return e.Window }
func (e *EventBase) SetTimeWindow(w TimeWindow) { e.Window = w }
func (e *EventBase) ExpectedArrival() TimeWindow { return e.Arrival }
func (e *EventBase) SetExpectedArrival(w TimeWindow) { e.Arrival = w }
func (e *EventBase) Duration() time.Duration { return e.Window.Duration() }

type Skill string

type Appointment struct {
	EventBase
	CustomerID      int
	MinimumDuration time.Duration
	MaximumDuration time.Duration
	OptimalDuration time.Duration
	Skills          []Skill
	// Contribution to the weighted-services count. Zero counts as one.
	ServiceWeight int
}

func (a *Appointment) Type() WorkEventType { return EventAppointment }

func (a *Appointment) Clone() WorkEvent {
	c := *a
	c.Skills = slices.Clone(a.Skills)
	return &c
}

func (a *Appointment) WeightedServices() int {
	if a.ServiceWeight <= 0 {
		return 1
	}
	return a.ServiceWeight
}

// IsWholeDay reports whether the customer accepts an arrival at any time of the day.
func (a *Appointment) IsWholeDay() bool {
	arrival := a.Arrival
	if arrival.IsZero() {
		return false
	}
	dayStart := StartOfDay(arrival.Start)
	return arrival.Start.Equal(dayStart) && !arrival.End.Before(dayStart.Add(23*time.Hour+59*time.Minute))
}

type Travel struct {
	EventBase
	Distance Distance
}

func (t *Travel) Type() WorkEventType { return EventTravel }

func (t *Travel) Clone() WorkEvent {
	c := *t
	return &c
}

type Waiting struct {
	EventBase
}

func (w *Waiting) Type() WorkEventType { return EventWaiting }

func (w *Waiting) Clone() WorkEvent {
	c := *w
	return &c
}

// WorkBreak is a generic break. MinAppointmentsBefore is a load-balancing
// constraint honoured by the solver when it re-schedules the break.
type WorkBreak struct {
	EventBase
	MinDuration           time.Duration
	MinAppointmentsBefore int
}

func (b *WorkBreak) Type() WorkEventType { return EventBreak }

func (b *WorkBreak) Clone() WorkEvent {
	c := *b
	return &c
}

// MinimalDuration falls back to the scheduled duration when no minimum is set.
func (b *WorkBreak) MinimalDuration() time.Duration {
	if b.MinDuration > 0 {
		return b.MinDuration
	}
	return b.Duration()
}

// Lunch is a break the generic break handling leaves alone.
type Lunch struct {
	WorkBreak
}

func (l *Lunch) Type() WorkEventType { return EventLunch }

func (l *Lunch) Clone() WorkEvent {
	c := *l
	return &c
}

// AsBreak unwraps any member of the break family, lunch included.
func AsBreak(e WorkEvent) (*WorkBreak, bool) {
	switch v := e.(type) {
	case *WorkBreak:
		return v, true
	case *Lunch:
		return &v.WorkBreak, true
	}
	return nil, false
}

type ReservedTime struct {
	EventBase
}

func (r *ReservedTime) Type() WorkEventType { return EventReservedTime }

func (r *ReservedTime) Clone() WorkEvent {
	c := *r
	return &c
}

type StartLocation struct {
	EventBase
	Location Coordinates
}

func (s *StartLocation) Type() WorkEventType { return EventStartLocation }

func (s *StartLocation) Clone() WorkEvent {
	c := *s
	return &c
}

type EndLocation struct {
	EventBase
	Location Coordinates
}

func (e *EndLocation) Type() WorkEventType { return EventEndLocation }

func (e *EndLocation) Clone() WorkEvent {
	c := *e
	return &c
}

// ExtraWork marks a long travel or waiting interval the service pro can fill
// with additional work. It is anchored to the event it was derived from.
type ExtraWork struct {
	EventBase
	AnchorID   int
	AnchorType WorkEventType
}

func (x *ExtraWork) Type() WorkEventType { return EventExtraWork }

func (x *ExtraWork) Clone() WorkEvent {
	c := *x
	return &c
}
