package validators

import (
	"route-optimization-service/internal/domain"
	"route-optimization-service/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const minute = time.Minute

func cleanRoute() *domain.Route {
	return testutil.NewRouteBuilder(1).
		Start().
		Travel(15*minute, 8000).
		Appointment(30 * minute).
		Travel(10*minute, 5000).
		Appointment(30 * minute).
		Break(15*minute, 30*minute).
		Travel(10*minute, 5000).
		Appointment(30 * minute).
		Travel(15*minute, 8000).
		End().
		Build()
}

func TestValidatorsPassOnCleanRoute(t *testing.T) {
	route := cleanRoute()
	for _, v := range NewRegistry(DefaultThresholds()).Validators() {
		assert.True(t, v.Validate(route), "validator %s", v.Violation())
	}
	assert.Empty(t, NewRegistry(DefaultThresholds()).Violations(route))
}

func TestLongInactivity(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Start().
		Travel(10*minute, 1000).
		Appointment(30 * minute).
		Travel(30*minute, 20000).
		Waiting(70 * minute).
		Appointment(30 * minute).
		End().
		Build()

	v := LongInactivity{Threshold: 90 * minute}
	assert.False(t, v.Validate(route))
	assert.Equal(t, domain.ViolationLongInactivity, v.Violation())

	assert.True(t, LongInactivity{Threshold: 100 * minute}.Validate(route))
}

func TestAverageInactivity(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Start().
		Appointment(30 * minute).
		Travel(35*minute, 20000).
		Appointment(30 * minute).
		Travel(35*minute, 20000).
		Appointment(30 * minute).
		End().
		Build()

	assert.True(t, LongInactivity{Threshold: 90 * minute}.Validate(route))
	assert.False(t, AverageInactivity{Threshold: 30 * minute}.Validate(route))
	assert.True(t, AverageInactivity{Threshold: 35 * minute}.Validate(route))
}

func TestAverageInactivityWithSingleProductiveEvent(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Start().
		Travel(3*time.Hour, 100000).
		Appointment(30 * minute).
		End().
		Build()

	assert.True(t, AverageInactivity{Threshold: time.Minute}.Validate(route))
	assert.True(t, LongInactivity{Threshold: time.Minute}.Validate(route))
}

func TestTwoBreaksInARow(t *testing.T) {
	broken := testutil.NewRouteBuilder(1).
		Appointment(30 * minute).
		Break(15*minute, 0).
		Travel(10*minute, 1000).
		Lunch(30*minute, 0).
		Appointment(30 * minute).
		Build()

	fine := testutil.NewRouteBuilder(2).
		Appointment(30 * minute).
		Break(15*minute, 0).
		Appointment(30 * minute).
		Lunch(30*minute, 0).
		Build()

	v := TwoBreaksInARow{}
	assert.False(t, v.Validate(broken))
	assert.True(t, v.Validate(fine))
	assert.Equal(t, domain.ViolationTwoBreaksInARow, v.Violation())
}

func TestInactivityBeforeFirstAppointment(t *testing.T) {
	late := testutil.NewRouteBuilder(1).
		Start().
		Travel(20*minute, 10000).
		Waiting(50 * minute).
		Appointment(30 * minute).
		End().
		Build()

	v := InactivityBeforeFirstAppointment{Threshold: 60 * minute}
	assert.False(t, v.Validate(late))
	assert.True(t, v.Validate(cleanRoute()))
	assert.True(t, v.Validate(testutil.NewRouteBuilder(3).Start().End().Build()))
}

func TestRegistryCollectsEveryViolation(t *testing.T) {
	route := testutil.NewRouteBuilder(1).
		Start().
		Travel(20*minute, 10000).
		Waiting(50 * minute).
		Appointment(30 * minute).
		Break(15*minute, 0).
		Lunch(30*minute, 0).
		Travel(40*minute, 30000).
		Waiting(60 * minute).
		Appointment(30 * minute).
		End().
		Build()

	violations := NewRegistry(DefaultThresholds()).Violations(route)

	assert.ElementsMatch(t, []domain.Violation{
		domain.ViolationLongInactivity,
		domain.ViolationAverageInactivity,
		domain.ViolationTwoBreaksInARow,
		domain.ViolationInactivityBeforeFirstAppointment,
	}, violations)
}
