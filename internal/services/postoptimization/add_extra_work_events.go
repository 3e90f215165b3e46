package postoptimization

import (
	"context"
	"fmt"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"time"
)

const (
	FlagAddExtraWorkEvents = "isAddExtraWorkEventsEnabled"

	// Travel and waiting at least this long get an extra work block.
	MinExtraWorkDuration = 30 * time.Minute
)

// AddExtraWorkEvents marks long travel and waiting intervals as extra work
// for offices that have the feature enabled.
type AddExtraWorkEvents struct {
	flags ports.FeatureFlagService
}

func NewAddExtraWorkEvents(flags ports.FeatureFlagService) *AddExtraWorkEvents {
	return &AddExtraWorkEvents{flags: flags}
}

func (h *AddExtraWorkEvents) Name() string { return "add_extra_work_events" }

func (h *AddExtraWorkEvents) Process(ctx context.Context, state *domain.OptimizationState) error {
	enabled, err := h.flags.IsFeatureEnabledForOffice(ctx, state.Office.ID, FlagAddExtraWorkEvents)
	if err != nil {
		return fmt.Errorf("add extra work events: office %d: %w", state.Office.ID, err)
	}
	if !enabled {
		return nil
	}

	nextID := maxEventID(state)
	for _, route := range state.Routes {
		nextID = addExtraWork(route, nextID)
	}
	return nil
}

// maxEventID is the highest event id anywhere in the state, so new events
// never reuse an id held by another route or an unassigned appointment.
func maxEventID(state *domain.OptimizationState) int {
	id := 0
	for _, route := range state.Routes {
		for _, e := range route.WorkEvents() {
			id = max(id, e.ID())
		}
	}
	for _, a := range state.UnassignedAppointments {
		id = max(id, a.ID())
	}
	return id
}

// addExtraWork numbers new events after lastID and returns the last id used.
func addExtraWork(route *domain.Route, lastID int) int {
	events := route.WorkEvents()
	nextID := lastID

	anchored := make(map[int]bool)
	for _, e := range events {
		if x, ok := e.(*domain.ExtraWork); ok {
			anchored[x.AnchorID] = true
		}
	}

	for _, e := range events {
		switch e.(type) {
		case *domain.Travel, *domain.Waiting:
		default:
			continue
		}
		if e.Duration() < MinExtraWorkDuration || anchored[e.ID()] {
			continue
		}

		nextID++
		route.AddWorkEvent(&domain.ExtraWork{
			EventBase: domain.EventBase{
				EventID: nextID,
				Label:   fmt.Sprintf("extra work during %s", e.Type()),
				Window:  e.TimeWindow(),
			},
			AnchorID:   e.ID(),
			AnchorType: e.Type(),
		})
	}
	return nextID
}
