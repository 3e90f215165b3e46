// Package metrics grades a route against operational quality metrics.
//
// Every calculator is a pure function of domain.RouteStats. It owns a weight,
// a gold-standard target and a penalty slope (points lost per unit of deviation),
// and produces a score clamped to [0, 5].
package metrics

import (
	"math"
	"route-optimization-service/internal/domain"
)

type Calculator interface {
	Key() domain.MetricKey
	Calculate(stats domain.RouteStats) domain.Metric
}

// lowerIsBetter awards full points at or below the gold standard.
func lowerIsBetter(value, goldStandard, slope float64) float64 {
	return domain.MaxPossibleScore - (value-goldStandard)/slope
}

// higherIsBetter awards full points at or above the gold standard.
func higherIsBetter(value, goldStandard, slope float64) float64 {
	return domain.MaxPossibleScore - (goldStandard-value)/slope
}

func newMetric(key domain.MetricKey, weight domain.Weight, value, points float64) domain.Metric {
	return domain.Metric{
		Key:    key,
		Value:  value,
		Weight: weight,
		Score:  domain.NewScore(points),
	}
}

type AverageMilesBetweenServices struct{}

const (
	averageMilesWeight       domain.Weight = 0.075
	averageMilesGoldStandard               = 4.0
	averageMilesSlope                      = 0.8
)

func (AverageMilesBetweenServices) Key() domain.MetricKey {
	return domain.MetricAverageMilesBetweenServices
}

func (c AverageMilesBetweenServices) Calculate(stats domain.RouteStats) domain.Metric {
	miles := domain.Round(stats.AverageDriveDistanceBetweenServices.Miles(), 2)
	return newMetric(c.Key(), averageMilesWeight, miles,
		lowerIsBetter(miles, averageMilesGoldStandard, averageMilesSlope))
}

type AverageTimeBetweenServices struct{}

const (
	averageTimeWeight       domain.Weight = 0.075
	averageTimeGoldStandard               = 8.0
	averageTimeSlope                      = 1.6
)

func (AverageTimeBetweenServices) Key() domain.MetricKey {
	return domain.MetricAverageTimeBetweenServices
}

// Time between services is whatever part of the working day is not spent servicing,
// spread over the gaps between appointments.
func (c AverageTimeBetweenServices) Calculate(stats domain.RouteStats) domain.Metric {
	idle := (stats.TotalWorkingTime - stats.TotalServiceTime).Minutes()
	gaps := max(stats.TotalAppointments-1, 1)
	minutes := domain.Round(idle/float64(gaps), 2)
	return newMetric(c.Key(), averageTimeWeight, minutes,
		lowerIsBetter(minutes, averageTimeGoldStandard, averageTimeSlope))
}

type AverageWeightedServicesPerHour struct{}

const (
	servicesPerHourWeight domain.Weight = 0.2
	servicesPerHourSlope                = 0.5
)

func (AverageWeightedServicesPerHour) Key() domain.MetricKey {
	return domain.MetricAverageWeightedServicesPerHour
}

func (c AverageWeightedServicesPerHour) Calculate(stats domain.RouteStats) domain.Metric {
	hours := stats.TotalWorkingTime.Hours()
	if hours <= 0 {
		return newMetric(c.Key(), servicesPerHourWeight, 0, domain.MinPossibleScore)
	}
	perHour := domain.Round(float64(stats.TotalWeightedServices)/hours, 1)
	return newMetric(c.Key(), servicesPerHourWeight, perHour,
		math.Min(perHour/servicesPerHourSlope, domain.MaxPossibleScore))
}

type TotalDriveMiles struct{}

const (
	totalMilesWeight       domain.Weight = 0.1
	totalMilesGoldStandard               = 60.0
	totalMilesSlope                      = 10.0
)

func (TotalDriveMiles) Key() domain.MetricKey { return domain.MetricTotalDriveMiles }

func (c TotalDriveMiles) Calculate(stats domain.RouteStats) domain.Metric {
	miles := domain.Round(stats.TotalDriveDistance.Miles(), 2)
	return newMetric(c.Key(), totalMilesWeight, miles,
		lowerIsBetter(miles, totalMilesGoldStandard, totalMilesSlope))
}

type TotalDriveTime struct{}

const (
	totalDriveTimeWeight       domain.Weight = 0.1
	totalDriveTimeGoldStandard               = 120.0
	totalDriveTimeSlope                      = 12.0
)

func (TotalDriveTime) Key() domain.MetricKey { return domain.MetricTotalDriveTime }

func (c TotalDriveTime) Calculate(stats domain.RouteStats) domain.Metric {
	minutes := domain.Round(stats.TotalDriveTime.Minutes(), 2)
	return newMetric(c.Key(), totalDriveTimeWeight, minutes,
		lowerIsBetter(minutes, totalDriveTimeGoldStandard, totalDriveTimeSlope))
}

type TotalWeightedServices struct{}

const (
	weightedServicesWeight       domain.Weight = 0.25
	weightedServicesGoldStandard               = 14.0
	weightedServicesSlope                      = 2.8
)

func (TotalWeightedServices) Key() domain.MetricKey { return domain.MetricTotalWeightedServices }

func (c TotalWeightedServices) Calculate(stats domain.RouteStats) domain.Metric {
	services := float64(stats.TotalWeightedServices)
	return newMetric(c.Key(), weightedServicesWeight, services,
		higherIsBetter(services, weightedServicesGoldStandard, weightedServicesSlope))
}

type TotalWorkingHours struct{}

const (
	workingHoursWeight       domain.Weight = 0.2
	workingHoursGoldStandard               = 8.0
	workingHoursSlope                      = 1.6
)

func (TotalWorkingHours) Key() domain.MetricKey { return domain.MetricTotalWorkingHours }

// Working both shorter and longer than the target day is penalized.
func (c TotalWorkingHours) Calculate(stats domain.RouteStats) domain.Metric {
	hours := domain.Round(stats.TotalWorkingTime.Hours(), 2)
	deviation := math.Abs(hours - workingHoursGoldStandard)
	return newMetric(c.Key(), workingHoursWeight, hours,
		domain.MaxPossibleScore-deviation/workingHoursSlope)
}
