package dto

import (
	"fmt"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/services/metrics"
	"time"
)

type Office struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`
}

type OptimizationState struct {
	ID                     int         `json:"id"`
	Office                 Office      `json:"office"`
	Date                   string      `json:"date"`
	Engine                 string      `json:"engine"`
	Routes                 []Route     `json:"routes"`
	UnassignedAppointments []WorkEvent `json:"unassigned_appointments,omitempty"`
}

func (s OptimizationState) ToDomain() (*domain.OptimizationState, error) {
	date, err := time.Parse(dateLayout, s.Date)
	if err != nil {
		return nil, fmt.Errorf("optimization state %d: date: %w", s.ID, err)
	}

	state := &domain.OptimizationState{
		ID:     s.ID,
		Office: domain.Office{ID: s.Office.ID, Name: s.Office.Name, Timezone: s.Office.Timezone},
		Date:   date,
		Engine: domain.OptimizationEngine(s.Engine),
		Routes: make([]*domain.Route, 0, len(s.Routes)),
	}

	for _, r := range s.Routes {
		route, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("optimization state %d: %w", s.ID, err)
		}
		state.Routes = append(state.Routes, route)
	}

	for _, e := range s.UnassignedAppointments {
		event, err := e.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("optimization state %d: unassigned: %w", s.ID, err)
		}
		appointment, ok := event.(*domain.Appointment)
		if !ok {
			return nil, fmt.Errorf("optimization state %d: unassigned event %d is a %s", s.ID, e.ID, e.Type)
		}
		state.UnassignedAppointments = append(state.UnassignedAppointments, appointment)
	}
	return state, nil
}

func OptimizationStateFromDomain(s *domain.OptimizationState) OptimizationState {
	out := OptimizationState{
		ID:     s.ID,
		Office: Office{ID: s.Office.ID, Name: s.Office.Name, Timezone: s.Office.Timezone},
		Date:   s.Date.Format(dateLayout),
		Engine: string(s.Engine),
		Routes: make([]Route, 0, len(s.Routes)),
	}
	for _, r := range s.Routes {
		out.Routes = append(out.Routes, RouteFromDomain(r))
	}
	for _, a := range s.UnassignedAppointments {
		out.UnassignedAppointments = append(out.UnassignedAppointments, WorkEventFromDomain(a))
	}
	return out
}

type Metric struct {
	Key           string  `json:"key"`
	Value         float64 `json:"value"`
	Weight        float64 `json:"weight"`
	Score         float64 `json:"score"`
	WeightedScore float64 `json:"weighted_score"`
}

type RouteScore struct {
	RouteID int      `json:"route_id,omitempty"`
	Metrics []Metric `json:"metrics"`
	Total   float64  `json:"total"`
}

func RouteScoreFromService(routeID int, s metrics.RouteScore) RouteScore {
	out := RouteScore{RouteID: routeID, Total: s.Total, Metrics: make([]Metric, 0, len(s.Metrics))}
	for _, m := range s.Metrics {
		out.Metrics = append(out.Metrics, Metric{
			Key:           string(m.Key),
			Value:         m.Value,
			Weight:        float64(m.Weight),
			Score:         float64(m.Score),
			WeightedScore: domain.Round(m.WeightedScore(), 3),
		})
	}
	return out
}

type PostProcessResponse struct {
	State  OptimizationState `json:"state"`
	Scores []RouteScore      `json:"scores"`
}

// RouteStats is the input of POST /routes/score. Distances are in meters,
// times in seconds.
type RouteStats struct {
	AverageDriveDistanceBetweenServices float64 `json:"average_drive_distance_between_services"`
	AverageDriveTimeBetweenServices     int     `json:"average_drive_time_between_services"`
	TotalDriveDistance                  float64 `json:"total_drive_distance"`
	TotalDriveTime                      int     `json:"total_drive_time"`
	TotalWorkingTime                    int     `json:"total_working_time"`
	TotalServiceTime                    int     `json:"total_service_time"`
	TotalAppointments                   int     `json:"total_appointments"`
	TotalWeightedServices               int     `json:"total_weighted_services"`
}

func (s RouteStats) ToDomain() domain.RouteStats {
	return domain.RouteStats{
		AverageDriveDistanceBetweenServices: domain.Distance(s.AverageDriveDistanceBetweenServices),
		AverageDriveTimeBetweenServices:     duration(s.AverageDriveTimeBetweenServices),
		TotalDriveDistance:                  domain.Distance(s.TotalDriveDistance),
		TotalDriveTime:                      duration(s.TotalDriveTime),
		TotalWorkingTime:                    duration(s.TotalWorkingTime),
		TotalServiceTime:                    duration(s.TotalServiceTime),
		TotalAppointments:                   s.TotalAppointments,
		TotalWeightedServices:               s.TotalWeightedServices,
	}
}
