package postoptimization

import (
	"context"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"route-optimization-service/internal/services/reoptimization"
	"route-optimization-service/internal/services/validators"
	"slices"
)

// attemptRule applies action when violation is present.
type attemptRule struct {
	violation domain.Violation
	action    reoptimization.ActionType
}

// attemptTable holds the rules of each attempt in priority order; the first
// matching rule wins. Attempt n uses attemptTable[n-1] and there is no attempt
// past the end of the table.
var attemptTable = [...][]attemptRule{
	{
		{domain.ViolationLongInactivity, reoptimization.ActionReverseRoute},
		{domain.ViolationAverageInactivity, reoptimization.ActionReduceWorkTimeRange},
		{domain.ViolationTwoBreaksInARow, reoptimization.ActionLimitBreakTimeFrames},
	},
	{
		{domain.ViolationAverageInactivity, reoptimization.ActionReduceWorkTimeRange},
		{domain.ViolationTwoBreaksInARow, reoptimization.ActionLimitBreakTimeFrames},
	},
	{
		{domain.ViolationInactivityBeforeFirstAppointment, reoptimization.ActionLimitFirstAppointmentExpectedArrival},
		{domain.ViolationTwoBreaksInARow, reoptimization.ActionLimitBreakTimeFrames},
	},
	{
		{domain.ViolationTwoBreaksInARow, reoptimization.ActionLimitBreakTimeFrames},
	},
}

// MaxReoptimizationAttempts bounds the validation loop of a single route.
const MaxReoptimizationAttempts = len(attemptTable)

// ReoptimizeRoutes re-solves routes that break quality rules, one corrective
// action per attempt.
type ReoptimizeRoutes struct {
	validators *validators.Registry
	solvers    ports.RouteOptimizationServiceFactory
	logger     *slog.Logger
	recorder   ports.AttemptRecorder
}

func NewReoptimizeRoutes(
	registry *validators.Registry,
	solvers ports.RouteOptimizationServiceFactory,
	logger *slog.Logger,
	recorder ports.AttemptRecorder,
) *ReoptimizeRoutes {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReoptimizeRoutes{
		validators: registry,
		solvers:    solvers,
		logger:     logger,
		recorder:   recorder,
	}
}

func (h *ReoptimizeRoutes) Name() string { return "reoptimize_routes" }

// Process runs the attempt loop for every route with appointments. Actions
// and their attempt counters are created per call.
func (h *ReoptimizeRoutes) Process(ctx context.Context, state *domain.OptimizationState) error {
	actions := reoptimization.NewFactory(h.solvers, h.logger, h.recorder)

	for i, route := range state.Routes {
		if !route.HasAppointments() {
			continue
		}

		out, err := h.processRoute(ctx, actions, route, state.Engine)
		if err != nil {
			return fmt.Errorf("reoptimize routes: route %d: %w", route.ID, err)
		}
		state.Routes[i] = out
	}
	return nil
}

func (h *ReoptimizeRoutes) processRoute(
	ctx context.Context,
	actions *reoptimization.Factory,
	route *domain.Route,
	engine domain.OptimizationEngine,
) (*domain.Route, error) {
	for attempt := 1; attempt <= MaxReoptimizationAttempts; attempt++ {
		if !route.HasAppointments() {
			return route, nil
		}

		violations := h.validators.Violations(route)
		if len(violations) == 0 {
			return route, nil
		}
		for _, v := range violations {
			h.recorder.RecordViolation(v)
		}

		EnforceMaxLoad(route)

		rule, ok := matchRule(attemptTable[attempt-1], violations)
		if !ok {
			continue
		}

		action, err := actions.Get(rule.action)
		if err != nil {
			return nil, err
		}

		h.logger.InfoContext(ctx, "start reoptimization",
			"route_id", route.ID,
			"office_id", route.OfficeID,
			"rule", action.Name(),
			"attempt", attempt,
			"date", route.Date.Format("2006-01-02"),
		)

		route, err = action.Process(ctx, route, engine)
		if err != nil {
			return nil, fmt.Errorf("attempt %d: %w", attempt, err)
		}
	}
	return route, nil
}

func matchRule(rules []attemptRule, violations []domain.Violation) (attemptRule, bool) {
	for _, r := range rules {
		if slices.Contains(violations, r.violation) {
			return r, true
		}
	}
	return attemptRule{}, false
}

// EnforceMaxLoad pins every regular break behind the number of appointments
// that precede it in the route. When two breaks would get the same count, that
// break and every later one is shifted by one so the counts strictly increase.
func EnforceMaxLoad(route *domain.Route) {
	seen, offset, prev := 0, 0, -1

	for _, e := range route.WorkEvents() {
		switch v := e.(type) {
		case *domain.Appointment:
			seen++
		case *domain.WorkBreak:
			count := seen + offset
			if count == prev {
				offset++
				count++
			}
			v.MinAppointmentsBefore = count
			prev = count
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) RecordViolation(domain.Violation) {}
func (nopRecorder) RecordAttempt(string, ports.AttemptOutcome) {}
