package postoptimization

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/ports"
	"route-optimization-service/internal/services/validators"
	"route-optimization-service/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minute = time.Minute

type logEntry struct {
	Msg      string `json:"msg"`
	RouteID  int    `json:"route_id"`
	OfficeID int    `json:"office_id"`
	Rule     string `json:"rule"`
	Attempt  int    `json:"attempt"`
	Date     string `json:"date"`
}

func logEntries(t *testing.T, buf *bytes.Buffer, msg string) []logEntry {
	t.Helper()
	var out []logEntry
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var e logEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func newReoptimizer(solver *testutil.StubSolver, recorder ports.AttemptRecorder) (*ReoptimizeRoutes, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	h := NewReoptimizeRoutes(
		validators.NewRegistry(validators.DefaultThresholds()),
		testutil.NewStubSolverFactory(solver),
		logger,
		recorder,
	)
	return h, buf
}

func stateOf(routes ...*domain.Route) *domain.OptimizationState {
	return &domain.OptimizationState{
		ID:     7,
		Office: domain.Office{ID: 1, Name: "Office", Timezone: "UTC"},
		Date:   testutil.Day,
		Engine: domain.EngineVroom,
		Routes: routes,
	}
}

func wholeDay() domain.TimeWindow {
	return testutil.Window(testutil.Day, testutil.Day.Add(24*time.Hour-time.Second))
}

// Two breaks back to back and nothing else wrong.
func routeWithStackedBreaks(id int) *domain.Route {
	return testutil.NewRouteBuilder(id).
		Start().
		Appointment(30*minute).
		Break(15*minute, 60*minute).
		Lunch(30*minute, 60*minute).
		Appointment(30*minute).
		End().
		Build()
}

// A single 100 minute gap: both long and average inactivity fail.
func routeWithLongGap(id int) *domain.Route {
	return testutil.NewRouteBuilder(id).
		Start().
		Travel(10*minute, 4000).
		AppointmentArriving(30*minute, wholeDay()).
		Travel(30*minute, 20000).
		Waiting(70*minute).
		Appointment(30*minute).
		End().
		Build()
}

func TestReoptimizeRoutesSkipsRoutesWithoutAppointments(t *testing.T) {
	solver := &testutil.StubSolver{}
	recorder := &testutil.RecordingRecorder{}
	h, _ := newReoptimizer(solver, recorder)

	route := testutil.NewRouteBuilder(1).Start().Travel(3*time.Hour, 100000).End().Build()
	state := stateOf(route)

	require.NoError(t, h.Process(context.Background(), state))

	assert.Same(t, route, state.Routes[0])
	assert.Equal(t, 0, solver.Calls())
	assert.Empty(t, recorder.Violations)
}

func TestReoptimizeRoutesLeavesCleanRoutes(t *testing.T) {
	solver := &testutil.StubSolver{}
	h, _ := newReoptimizer(solver, nil)

	route := testutil.NewRouteBuilder(1).
		Start().
		Travel(10*minute, 4000).
		Appointment(30*minute).
		Travel(10*minute, 4000).
		Appointment(30*minute).
		End().
		Build()
	state := stateOf(route)

	require.NoError(t, h.Process(context.Background(), state))

	assert.Same(t, route, state.Routes[0])
	assert.Equal(t, 0, solver.Calls())
}

func TestReoptimizeRoutesTerminatesOnPersistentViolation(t *testing.T) {
	solver := &testutil.StubSolver{}
	recorder := &testutil.RecordingRecorder{}
	h, buf := newReoptimizer(solver, recorder)

	state := stateOf(routeWithStackedBreaks(1))
	require.NoError(t, h.Process(context.Background(), state))

	// Limit break time frames allows two attempts per route.
	assert.Equal(t, 2, solver.Calls())
	assert.Equal(t,
		[]ports.AttemptOutcome{ports.OutcomeAccepted, ports.OutcomeAccepted, ports.OutcomeExhausted, ports.OutcomeExhausted},
		recorder.Attempts["limit_break_time_frames"],
	)
	assert.Len(t, recorder.Violations, MaxReoptimizationAttempts)

	started := logEntries(t, buf, "start reoptimization")
	require.Len(t, started, MaxReoptimizationAttempts)
	for i, e := range started {
		assert.Equal(t, i+1, e.Attempt)
		assert.Equal(t, "limit_break_time_frames", e.Rule)
		assert.Equal(t, 1, e.RouteID)
		assert.Equal(t, 1, e.OfficeID)
		assert.Equal(t, "2026-03-02", e.Date)
	}
}

func TestReoptimizeRoutesFollowsAttemptPriorities(t *testing.T) {
	solver := &testutil.StubSolver{}
	h, buf := newReoptimizer(solver, nil)

	state := stateOf(routeWithLongGap(1))
	require.NoError(t, h.Process(context.Background(), state))

	started := logEntries(t, buf, "start reoptimization")
	require.Len(t, started, 2)
	assert.Equal(t, "reverse_route", started[0].Rule)
	assert.Equal(t, 1, started[0].Attempt)
	assert.Equal(t, "reduce_work_time_range", started[1].Rule)
	assert.Equal(t, 2, started[1].Attempt)

	assert.Equal(t, 2, solver.Calls())
	// 100 minutes of waiting and travel, 70 of them waiting: the day ends 35 minutes earlier.
	assert.True(t, state.Routes[0].TimeWindow.End.Equal(testutil.At(17, 25)))
}

func TestReoptimizeRoutesLimitsFirstAppointmentOnThirdAttempt(t *testing.T) {
	solver := &testutil.StubSolver{}
	recorder := &testutil.RecordingRecorder{}
	h, buf := newReoptimizer(solver, recorder)

	// 80 minutes pass before the first appointment; nothing else is wrong.
	route := testutil.NewRouteBuilder(1).
		Start().
		Travel(20*minute, 9000).
		Waiting(60*minute).
		AppointmentArriving(30*minute, testutil.Window(testutil.At(8, 0), testutil.At(17, 0))).
		Appointment(30*minute).
		End().
		Build()
	state := stateOf(route)

	require.NoError(t, h.Process(context.Background(), state))

	started := logEntries(t, buf, "start reoptimization")
	require.Len(t, started, 1)
	assert.Equal(t, 3, started[0].Attempt)
	assert.Equal(t, "limit_first_appointment_expected_arrival", started[0].Rule)

	assert.Equal(t, 1, solver.Calls())
	first := state.Routes[0].Appointments()[0]
	// Earliest is the day start, latest is 08:00 plus the first drive and visit.
	assert.True(t, first.ExpectedArrival().Start.Equal(testutil.Day))
	assert.True(t, first.ExpectedArrival().End.Equal(testutil.At(8, 50)))
	assert.Equal(t,
		[]ports.AttemptOutcome{ports.OutcomeAccepted},
		recorder.Attempts["limit_first_appointment_expected_arrival"],
	)
}

func TestReoptimizeRoutesKeepsBaselineWhenSolverLosesAppointments(t *testing.T) {
	solver := &testutil.StubSolver{Respond: func(route *domain.Route) (*domain.Route, error) {
		solved := route.Clone()
		appointments := solved.Appointments()
		solved.RemoveWorkEvent(appointments[len(appointments)-1])
		return solved, nil
	}}
	recorder := &testutil.RecordingRecorder{}
	h, buf := newReoptimizer(solver, recorder)

	state := stateOf(routeWithLongGap(1))
	require.NoError(t, h.Process(context.Background(), state))

	out := state.Routes[0]
	require.Len(t, out.Appointments(), 2)
	assert.True(t, out.Appointments()[0].IsWholeDay())
	assert.True(t, out.TimeWindow.End.Equal(testutil.At(18, 0)))

	failed := logEntries(t, buf, "reoptimization failed")
	require.Len(t, failed, 2)
	assert.Equal(t, "reverse_route", failed[0].Rule)
	assert.Equal(t, "reduce_work_time_range", failed[1].Rule)
	assert.Equal(t, []ports.AttemptOutcome{ports.OutcomeRejected}, recorder.Attempts["reverse_route"])
}

func TestReoptimizeRoutesCountsAttemptsPerRun(t *testing.T) {
	solver := &testutil.StubSolver{}
	h, _ := newReoptimizer(solver, nil)

	require.NoError(t, h.Process(context.Background(), stateOf(routeWithStackedBreaks(1))))
	require.NoError(t, h.Process(context.Background(), stateOf(routeWithStackedBreaks(1))))

	assert.Equal(t, 4, solver.Calls())
}

func TestReoptimizeRoutesPropagatesUnknownEngine(t *testing.T) {
	h, _ := newReoptimizer(&testutil.StubSolver{}, nil)

	state := stateOf(routeWithStackedBreaks(1))
	state.Engine = domain.OptimizationEngine("OTHER")

	err := h.Process(context.Background(), state)
	require.ErrorIs(t, err, ports.ErrUnknownEngine)
	assert.Contains(t, err.Error(), "route 1")
}

func TestEnforceMaxLoad(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Appointment(30*minute).
		Break(15*minute, 0).
		Appointment(30*minute).
		Appointment(30*minute).
		Lunch(30*minute, 0).
		Appointment(30*minute).
		Break(15*minute, 0).
		Build()

	EnforceMaxLoad(route)

	breaks := route.RegularBreaks()
	require.Len(t, breaks, 2)
	assert.Equal(t, 1, breaks[0].MinAppointmentsBefore)
	assert.Equal(t, 4, breaks[1].MinAppointmentsBefore)
	assert.Equal(t, 0, route.Lunches()[0].MinAppointmentsBefore)
}

func TestEnforceMaxLoadSeparatesBreaksWithEqualCounts(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Appointment(30*minute).
		Break(15*minute, 0).
		Break(15*minute, 0).
		Appointment(30*minute).
		Break(15*minute, 0).
		Build()

	EnforceMaxLoad(route)

	var counts []int
	for _, b := range route.RegularBreaks() {
		counts = append(counts, b.MinAppointmentsBefore)
	}
	assert.Equal(t, []int{1, 2, 3}, counts)
}
