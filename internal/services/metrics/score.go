package metrics

import "route-optimization-service/internal/domain"

// Calculators returns every metric calculator in reporting order.
func Calculators() []Calculator {
	return []Calculator{
		AverageMilesBetweenServices{},
		AverageTimeBetweenServices{},
		AverageWeightedServicesPerHour{},
		TotalDriveMiles{},
		TotalDriveTime{},
		TotalWeightedServices{},
		TotalWorkingHours{},
	}
}

// Aggregate quality score of a route. Total is the sum of weighted scores.
type RouteScore struct {
	Metrics []domain.Metric
	Total   float64
}

func Score(stats domain.RouteStats) RouteScore {
	calculators := Calculators()
	res := RouteScore{Metrics: make([]domain.Metric, 0, len(calculators))}
	for _, c := range calculators {
		m := c.Calculate(stats)
		res.Metrics = append(res.Metrics, m)
		res.Total += m.WeightedScore()
	}
	res.Total = domain.Round(res.Total, 2)
	return res
}
