package validators

import "route-optimization-service/internal/domain"

// Registry is the fixed set of validators run after every optimization.
type Registry struct {
	validators []Validator
}

func NewRegistry(t Thresholds) *Registry {
	return &Registry{
		validators: []Validator{
			LongInactivity{Threshold: t.LongInactivity},
			AverageInactivity{Threshold: t.AverageInactivity},
			TwoBreaksInARow{},
			InactivityBeforeFirstAppointment{Threshold: t.InactivityBeforeFirstAppointment},
		},
	}
}

func (r *Registry) Validators() []Validator { return r.validators }

// Violations runs every validator and collects all failures, not just the first.
func (r *Registry) Violations(route *domain.Route) []domain.Violation {
	var out []domain.Violation
	for _, v := range r.validators {
		if !v.Validate(route) {
			out = append(out, v.Violation())
		}
	}
	return out
}
