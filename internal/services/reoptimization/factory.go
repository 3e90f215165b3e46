package reoptimization

import (
	"errors"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
)

var ErrUnknownAction = errors.New("unknown reoptimization action")

type ActionType int

const (
	ActionLimitBreakTimeFrames ActionType = iota + 1
	ActionLimitFirstAppointmentExpectedArrival
	ActionReduceWorkTimeRange
	ActionReverseRoute
)

func (t ActionType) String() string {
	switch t {
	case ActionLimitBreakTimeFrames:
		return "limit_break_time_frames"
	case ActionLimitFirstAppointmentExpectedArrival:
		return "limit_first_appointment_expected_arrival"
	case ActionReduceWorkTimeRange:
		return "reduce_work_time_range"
	case ActionReverseRoute:
		return "reverse_route"
	}
	return fmt.Sprintf("action(%d)", int(t))
}

// Factory holds exactly one instance of every action.
// Attempt counters are shared through these instances, so use one Factory per run.
type Factory struct {
	actions map[ActionType]Action
}

func NewFactory(
	solvers ports.RouteOptimizationServiceFactory,
	logger *slog.Logger,
	recorder ports.AttemptRecorder,
) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	s := solver{services: solvers}
	return &Factory{
		actions: map[ActionType]Action{
			ActionLimitBreakTimeFrames:                 newAction(limitBreakTimeFrames{s}, logger, recorder),
			ActionLimitFirstAppointmentExpectedArrival: newAction(limitFirstAppointmentExpectedArrival{s}, logger, recorder),
			ActionReduceWorkTimeRange:                  newAction(reduceWorkTimeRange{s}, logger, recorder),
			ActionReverseRoute:                         newAction(reverseRoute{s}, logger, recorder),
		},
	}
}

func (f *Factory) Get(t ActionType) (Action, error) {
	a, ok := f.actions[t]
	if !ok {
		return nil, fmt.Errorf("get action %s: %w", t, ErrUnknownAction)
	}
	return a, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordViolation(domain.Violation) {}
func (nopRecorder) RecordAttempt(string, ports.AttemptOutcome) {}
