package domain

import "math"

const (
	MinPossibleScore = 0.0
	MaxPossibleScore = 5.0
)

type MetricKey string

const (
	MetricAverageMilesBetweenServices    MetricKey = "average_miles_between_services"
	MetricAverageTimeBetweenServices     MetricKey = "average_time_between_services"
	MetricAverageWeightedServicesPerHour MetricKey = "average_weighted_services_per_hour"
	MetricTotalDriveMiles                MetricKey = "total_drive_miles"
	MetricTotalDriveTime                 MetricKey = "total_drive_time"
	MetricTotalWeightedServices          MetricKey = "total_weighted_services"
	MetricTotalWorkingHours              MetricKey = "total_working_hours"
)

// Relative importance of a metric in the aggregate route score.
type Weight float64

// Grade of a metric, always within [MinPossibleScore, MaxPossibleScore].
type Score float64

// NewScore clamps points into the valid score range and rounds to two decimals.
func NewScore(points float64) Score {
	if math.IsNaN(points) {
		return Score(MinPossibleScore)
	}
	clamped := math.Max(MinPossibleScore, math.Min(MaxPossibleScore, points))
	return Score(Round(clamped, 2))
}

type Metric struct {
	Key    MetricKey
	Value  float64
	Weight Weight
	Score  Score
}

func (m Metric) WeightedScore() float64 { return float64(m.Score) * float64(m.Weight) }

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
