package domain

// Identifier emitted by a route validator when a quality rule is broken.
// Violations are only ever compared for identity.
type Violation string

const (
	ViolationLongInactivity                   Violation = "long_inactivity"
	ViolationAverageInactivity                Violation = "average_inactivity"
	ViolationTwoBreaksInARow                  Violation = "two_breaks_in_a_row"
	ViolationInactivityBeforeFirstAppointment Violation = "inactivity_before_first_appointment"
)
