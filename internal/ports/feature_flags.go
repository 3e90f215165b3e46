package ports

import "context"

// Contract for per-office feature toggles.
type FeatureFlagService interface {
	IsFeatureEnabledForOffice(ctx context.Context, officeID int, flag string) (bool, error)
}
