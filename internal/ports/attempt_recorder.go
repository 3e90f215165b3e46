package ports

import "route-optimization-service/internal/domain"

type AttemptOutcome string

const (
	// The reoptimized route passed the non-regression check.
	OutcomeAccepted AttemptOutcome = "accepted"
	// The reoptimized route was worse than the baseline and was discarded.
	OutcomeRejected AttemptOutcome = "rejected"
	// The action had used up its attempts for the route.
	OutcomeExhausted AttemptOutcome = "exhausted"
	// The strategy found nothing to adjust and did not call the solver.
	OutcomeUnchanged AttemptOutcome = "unchanged"
)

// Sink for reoptimization outcomes, used for observability only.
type AttemptRecorder interface {
	RecordViolation(violation domain.Violation)
	RecordAttempt(action string, outcome AttemptOutcome)
}
