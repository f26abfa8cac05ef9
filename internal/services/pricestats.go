package services

import "pricewatch/internal/domain"

// ComputeStats derives summary statistics from a time-ordered price
// series. The second return is false for an empty series. The engine
// trusts the caller's ordering and never caches: the series is owned
// elsewhere and may grow between calls.
func ComputeStats(series []domain.PriceObservation) (domain.PriceStats, bool) {
	if len(series) == 0 {
		return domain.PriceStats{}, false
	}

	first := series[0].Price
	current := series[len(series)-1].Price
	min, max := first, first
	for _, obs := range series[1:] {
		if obs.Price < min {
			min = obs.Price
		}
		if obs.Price > max {
			max = obs.Price
		}
	}

	delta := current - first
	deltaPercent := 0.0
	if first != 0 {
		deltaPercent = float64(delta) / float64(first) * 100
	}

	return domain.PriceStats{
		Min:          min,
		Max:          max,
		Current:      current,
		First:        first,
		Delta:        delta,
		DeltaPercent: deltaPercent,
		SampleCount:  len(series),
	}, true
}
