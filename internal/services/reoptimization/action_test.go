package reoptimization

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"route-optimization-service/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minute = time.Minute

func newTestFactory(solver *testutil.StubSolver, recorder ports.AttemptRecorder) *Factory {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFactory(testutil.NewStubSolverFactory(solver), logger, recorder)
}

func wholeDay() domain.TimeWindow {
	return testutil.Window(testutil.Day, testutil.Day.Add(24*time.Hour-time.Second))
}

// Start 08:00, breaks at 09:10 and 11:55, lunch at 10:25, end 13:20.
func routeWithBreaks() *domain.Route {
	return testutil.NewRouteBuilder(1).
		Start().
		Travel(10*minute, 4000).
		Appointment(60*minute).
		Break(15*minute, 60*minute).
		Appointment(60*minute).
		Lunch(30*minute, 60*minute).
		Appointment(60*minute).
		Break(15*minute, 60*minute).
		Appointment(60*minute).
		Travel(10*minute, 4000).
		End().
		Build()
}

func routeWithWholeDayAppointments() *domain.Route {
	return testutil.NewRouteBuilder(2).
		Start().
		Travel(10*minute, 4000).
		AppointmentArriving(30*minute, wholeDay()).
		Travel(10*minute, 4000).
		Appointment(30*minute).
		Travel(10*minute, 4000).
		AppointmentArriving(30*minute, wholeDay()).
		End().
		Build()
}

func dropLastAppointment(route *domain.Route) (*domain.Route, error) {
	solved := route.Clone()
	appointments := solved.Appointments()
	solved.RemoveWorkEvent(appointments[len(appointments)-1])
	return solved, nil
}

func TestActionStopsAfterMaxAttempts(t *testing.T) {
	solver := &testutil.StubSolver{}
	recorder := &testutil.RecordingRecorder{}
	factory := newTestFactory(solver, recorder)

	reverse, err := factory.Get(ActionReverseRoute)
	require.NoError(t, err)

	route := routeWithWholeDayAppointments()
	_, err = reverse.Process(context.Background(), route, domain.EngineVroom)
	require.NoError(t, err)
	require.Equal(t, 1, solver.Calls())

	again := routeWithWholeDayAppointments()
	out, err := reverse.Process(context.Background(), again, domain.EngineVroom)
	require.NoError(t, err)
	assert.Same(t, again, out)
	assert.Equal(t, 1, solver.Calls())
	assert.Equal(t,
		[]ports.AttemptOutcome{ports.OutcomeAccepted, ports.OutcomeExhausted},
		recorder.Attempts[ActionReverseRoute.String()],
	)
}

func TestLimitBreakTimeFramesAllowsTwoAttempts(t *testing.T) {
	solver := &testutil.StubSolver{}
	breaks, err := newTestFactory(solver, nil).Get(ActionLimitBreakTimeFrames)
	require.NoError(t, err)

	route := routeWithBreaks()
	for i := 0; i < 3; i++ {
		route, err = breaks.Process(context.Background(), route, domain.EngineGoogle)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, solver.Calls())
}

func TestAttemptCountersAreScopedToTheFactory(t *testing.T) {
	solver := &testutil.StubSolver{}

	for i := 0; i < 2; i++ {
		reverse, err := newTestFactory(solver, nil).Get(ActionReverseRoute)
		require.NoError(t, err)
		_, err = reverse.Process(context.Background(), routeWithWholeDayAppointments(), domain.EngineVroom)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, solver.Calls())
}

func TestActionRejectsRouteWithFewerAppointments(t *testing.T) {
	solver := &testutil.StubSolver{Respond: dropLastAppointment}
	recorder := &testutil.RecordingRecorder{}
	reverse, err := newTestFactory(solver, recorder).Get(ActionReverseRoute)
	require.NoError(t, err)

	route := routeWithWholeDayAppointments()
	out, err := reverse.Process(context.Background(), route, domain.EngineVroom)
	require.NoError(t, err)

	require.Len(t, out.Appointments(), 3)
	// The baseline is the route before the action touched it.
	assert.True(t, out.Appointments()[2].IsWholeDay())
	assert.Equal(t,
		[]ports.AttemptOutcome{ports.OutcomeRejected},
		recorder.Attempts[ActionReverseRoute.String()],
	)
}

func TestActionRejectsRouteEndingLater(t *testing.T) {
	solver := &testutil.StubSolver{Respond: func(route *domain.Route) (*domain.Route, error) {
		solved := route.Clone()
		end := solved.EndLocation()
		end.SetTimeWindow(testutil.Window(testutil.At(18, 0), testutil.At(18, 30)))
		return solved, nil
	}}
	reduce, err := newTestFactory(solver, nil).Get(ActionReduceWorkTimeRange)
	require.NoError(t, err)

	route := testutil.NewRouteBuilder(3).
		Start().
		Appointment(30*minute).
		Waiting(60*minute).
		Appointment(30*minute).
		End().
		Build()

	out, err := reduce.Process(context.Background(), route, domain.EngineGoogle)
	require.NoError(t, err)

	assert.Equal(t, 1, solver.Calls())
	assert.True(t, out.TimeWindow.End.Equal(testutil.At(18, 0)))
	assert.True(t, out.EndAt().Before(testutil.At(18, 0)))
}

func TestEarlierAttemptComparesAgainstMutatedRoute(t *testing.T) {
	solver := &testutil.StubSolver{Respond: dropLastAppointment}
	breaks, err := newTestFactory(solver, nil).Get(ActionLimitBreakTimeFrames)
	require.NoError(t, err)

	route := routeWithBreaks()
	out, err := breaks.Process(context.Background(), route, domain.EngineGoogle)
	require.NoError(t, err)

	assert.Same(t, route, out)
	assert.Len(t, out.Appointments(), 4)
}

func TestActionPropagatesUnknownEngine(t *testing.T) {
	reverse, err := newTestFactory(&testutil.StubSolver{}, nil).Get(ActionReverseRoute)
	require.NoError(t, err)

	_, err = reverse.Process(context.Background(), routeWithWholeDayAppointments(), domain.OptimizationEngine("OTHER"))
	require.ErrorIs(t, err, ports.ErrUnknownEngine)
}

func TestFactoryRejectsUnknownAction(t *testing.T) {
	_, err := newTestFactory(&testutil.StubSolver{}, nil).Get(ActionType(42))
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestActionWithNothingToAdjustIsNotAFailure(t *testing.T) {
	solver := &testutil.StubSolver{}
	recorder := &testutil.RecordingRecorder{}
	var logs bytes.Buffer
	factory := NewFactory(testutil.NewStubSolverFactory(solver), slog.New(slog.NewTextHandler(&logs, nil)), recorder)

	reverse, err := factory.Get(ActionReverseRoute)
	require.NoError(t, err)

	// No whole-day appointment, and the route runs into overtime.
	route := testutil.NewRouteBuilder(5).
		Start().
		Appointment(30*minute).
		Travel(10*time.Hour, 50000).
		End().
		Build()
	require.True(t, route.EndAt().After(route.TimeWindow.End))

	out, err := reverse.Process(context.Background(), route, domain.EngineVroom)
	require.NoError(t, err)

	assert.Same(t, route, out)
	assert.Equal(t, 0, solver.Calls())
	assert.Equal(t,
		[]ports.AttemptOutcome{ports.OutcomeUnchanged},
		recorder.Attempts[ActionReverseRoute.String()],
	)
	assert.NotContains(t, logs.String(), "reoptimization failed")
}
