package dto

import (
	"errors"
	"fmt"
	"route-optimization-service/internal/domain"
	"time"
)

var ErrUnknownEventType = errors.New("unknown work event type")

type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Coordinates struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// WorkEvent is the flat wire form of every work event variant. Fields that do
// not apply to a variant are left empty.
type WorkEvent struct {
	ID              int         `json:"id"`
	Type            string      `json:"type"`
	Description     string      `json:"description,omitempty"`
	TimeWindow      TimeWindow  `json:"time_window"`
	ExpectedArrival *TimeWindow `json:"expected_arrival,omitempty"`

	CustomerID             int      `json:"customer_id,omitempty"`
	MinimumDurationSeconds int      `json:"minimum_duration_seconds,omitempty"`
	MaximumDurationSeconds int      `json:"maximum_duration_seconds,omitempty"`
	OptimalDurationSeconds int      `json:"optimal_duration_seconds,omitempty"`
	Skills                 []string `json:"skills,omitempty"`
	ServiceWeight          int      `json:"service_weight,omitempty"`

	DistanceMeters float64 `json:"distance_meters,omitempty"`

	MinAppointmentsBefore int `json:"min_appointments_before,omitempty"`

	Location *Coordinates `json:"location,omitempty"`

	AnchorID   int    `json:"anchor_id,omitempty"`
	AnchorType string `json:"anchor_type,omitempty"`
}

type ServicePro struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Skills        []string     `json:"skills,omitempty"`
	WorkingHours  TimeWindow   `json:"working_hours"`
	StartLocation *Coordinates `json:"start_location,omitempty"`
	EndLocation   *Coordinates `json:"end_location,omitempty"`
}

type Route struct {
	ID         int         `json:"id"`
	OfficeID   int         `json:"office_id"`
	Date       string      `json:"date"`
	Type       string      `json:"type"`
	Capacity   int         `json:"capacity"`
	ServicePro ServicePro  `json:"service_pro"`
	TimeWindow TimeWindow  `json:"time_window"`
	WorkEvents []WorkEvent `json:"work_events"`
}

const dateLayout = "2006-01-02"

func timeWindowFromDomain(w domain.TimeWindow) TimeWindow {
	return TimeWindow{Start: w.Start, End: w.End}
}

func (w TimeWindow) toDomain() (domain.TimeWindow, error) {
	return domain.NewTimeWindow(w.Start, w.End)
}

func coordinatesFromDomain(c domain.Coordinates) *Coordinates {
	if c == (domain.Coordinates{}) {
		return nil
	}
	return &Coordinates{Lon: c.Lon, Lat: c.Lat}
}

func (c *Coordinates) toDomain() domain.Coordinates {
	if c == nil {
		return domain.Coordinates{}
	}
	return domain.Coordinates{Lon: c.Lon, Lat: c.Lat}
}

func skillsFromDomain(skills []domain.Skill) []string {
	if len(skills) == 0 {
		return nil
	}
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, string(s))
	}
	return out
}

func skillsToDomain(skills []string) []domain.Skill {
	if len(skills) == 0 {
		return nil
	}
	out := make([]domain.Skill, 0, len(skills))
	for _, s := range skills {
		out = append(out, domain.Skill(s))
	}
	return out
}

func seconds(d time.Duration) int { return int(d / time.Second) }

func duration(s int) time.Duration { return time.Duration(s) * time.Second }

func WorkEventFromDomain(e domain.WorkEvent) WorkEvent {
	out := WorkEvent{
		ID:          e.ID(),
		Type:        string(e.Type()),
		Description: e.Description(),
		TimeWindow:  timeWindowFromDomain(e.TimeWindow()),
	}
	if arrival := e.ExpectedArrival(); !arrival.IsZero() {
		w := timeWindowFromDomain(arrival)
		out.ExpectedArrival = &w
	}

	switch v := e.(type) {
	case *domain.Appointment:
		out.CustomerID = v.CustomerID
		out.MinimumDurationSeconds = seconds(v.MinimumDuration)
		out.MaximumDurationSeconds = seconds(v.MaximumDuration)
		out.OptimalDurationSeconds = seconds(v.OptimalDuration)
		out.Skills = skillsFromDomain(v.Skills)
		out.ServiceWeight = v.ServiceWeight
	case *domain.Travel:
		out.DistanceMeters = v.Distance.Meters()
	case *domain.WorkBreak:
		out.MinimumDurationSeconds = seconds(v.MinDuration)
		out.MinAppointmentsBefore = v.MinAppointmentsBefore
	case *domain.Lunch:
		out.MinimumDurationSeconds = seconds(v.MinDuration)
		out.MinAppointmentsBefore = v.MinAppointmentsBefore
	case *domain.StartLocation:
		out.Location = coordinatesFromDomain(v.Location)
	case *domain.EndLocation:
		out.Location = coordinatesFromDomain(v.Location)
	case *domain.ExtraWork:
		out.AnchorID = v.AnchorID
		out.AnchorType = string(v.AnchorType)
	}
	return out
}

func (e WorkEvent) ToDomain() (domain.WorkEvent, error) {
	window, err := e.TimeWindow.toDomain()
	if err != nil {
		return nil, fmt.Errorf("work event %d: time window: %w", e.ID, err)
	}
	base := domain.EventBase{EventID: e.ID, Label: e.Description, Window: window}
	if e.ExpectedArrival != nil {
		arrival, err := e.ExpectedArrival.toDomain()
		if err != nil {
			return nil, fmt.Errorf("work event %d: expected arrival: %w", e.ID, err)
		}
		base.Arrival = arrival
	}

	switch domain.WorkEventType(e.Type) {
	case domain.EventAppointment:
		return &domain.Appointment{
			EventBase:       base,
			CustomerID:      e.CustomerID,
			MinimumDuration: duration(e.MinimumDurationSeconds),
			MaximumDuration: duration(e.MaximumDurationSeconds),
			OptimalDuration: duration(e.OptimalDurationSeconds),
			Skills:          skillsToDomain(e.Skills),
			ServiceWeight:   e.ServiceWeight,
		}, nil
	case domain.EventTravel:
		return &domain.Travel{EventBase: base, Distance: domain.Distance(e.DistanceMeters)}, nil
	case domain.EventWaiting:
		return &domain.Waiting{EventBase: base}, nil
	case domain.EventBreak:
		return &domain.WorkBreak{
			EventBase:             base,
			MinDuration:           duration(e.MinimumDurationSeconds),
			MinAppointmentsBefore: e.MinAppointmentsBefore,
		}, nil
	case domain.EventLunch:
		return &domain.Lunch{WorkBreak: domain.WorkBreak{
			EventBase:             base,
			MinDuration:           duration(e.MinimumDurationSeconds),
			MinAppointmentsBefore: e.MinAppointmentsBefore,
		}}, nil
	case domain.EventReservedTime:
		return &domain.ReservedTime{EventBase: base}, nil
	case domain.EventStartLocation:
		return &domain.StartLocation{EventBase: base, Location: e.Location.toDomain()}, nil
	case domain.EventEndLocation:
		return &domain.EndLocation{EventBase: base, Location: e.Location.toDomain()}, nil
	case domain.EventExtraWork:
		return &domain.ExtraWork{
			EventBase:  base,
			AnchorID:   e.AnchorID,
			AnchorType: domain.WorkEventType(e.AnchorType),
		}, nil
	}
	return nil, fmt.Errorf("work event %d: %q: %w", e.ID, e.Type, ErrUnknownEventType)
}

func RouteFromDomain(r *domain.Route) Route {
	out := Route{
		ID:       r.ID,
		OfficeID: r.OfficeID,
		Date:     r.Date.Format(dateLayout),
		Type:     string(r.Type),
		Capacity: r.Capacity,
		ServicePro: ServicePro{
			ID:            r.ServicePro.ID,
			Name:          r.ServicePro.Name,
			Skills:        skillsFromDomain(r.ServicePro.Skills),
			WorkingHours:  timeWindowFromDomain(r.ServicePro.WorkingHours),
			StartLocation: coordinatesFromDomain(r.ServicePro.StartLocation),
			EndLocation:   coordinatesFromDomain(r.ServicePro.EndLocation),
		},
		TimeWindow: timeWindowFromDomain(r.TimeWindow),
	}

	events := r.WorkEvents()
	out.WorkEvents = make([]WorkEvent, 0, len(events))
	for _, e := range events {
		out.WorkEvents = append(out.WorkEvents, WorkEventFromDomain(e))
	}
	return out
}

func (r Route) ToDomain() (*domain.Route, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return nil, fmt.Errorf("route %d: date: %w", r.ID, err)
	}
	window, err := r.TimeWindow.toDomain()
	if err != nil {
		return nil, fmt.Errorf("route %d: time window: %w", r.ID, err)
	}

	route := &domain.Route{
		ID:       r.ID,
		OfficeID: r.OfficeID,
		Date:     date,
		Type:     domain.RouteType(r.Type),
		Capacity: r.Capacity,
		ServicePro: domain.ServicePro{
			ID:            r.ServicePro.ID,
			Name:          r.ServicePro.Name,
			Skills:        skillsToDomain(r.ServicePro.Skills),
			WorkingHours:  domain.TimeWindow{Start: r.ServicePro.WorkingHours.Start, End: r.ServicePro.WorkingHours.End},
			StartLocation: r.ServicePro.StartLocation.toDomain(),
			EndLocation:   r.ServicePro.EndLocation.toDomain(),
		},
		TimeWindow: window,
	}

	for _, e := range r.WorkEvents {
		event, err := e.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", r.ID, err)
		}
		route.AddWorkEvent(event)
	}
	return route, nil
}
