package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeWindow = errors.New("invalid time window")

// Closed interval [Start, End]. The zero value is an empty window.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow rejects windows whose end precedes their start.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if end.Before(start) {
		return TimeWindow{}, fmt.Errorf(
			"new time window: start %s after end %s: %w",
			start.Format(time.RFC3339), end.Format(time.RFC3339), ErrInvalidTimeWindow,
		)
	}
	return TimeWindow{Start: start, End: end}, nil
}

func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

func (w TimeWindow) IsZero() bool { return w.Start.IsZero() && w.End.IsZero() }

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
