package dataprocessing

import (
	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

// Aggregate groups records by station, in first-seen order, and sums their
// durations per category. The returned category set is VA, NVA, MUDA
// followed by any other category in first-seen order; every aggregate has an
// entry for each of them.
func Aggregate(records []domain.NormalizedRecord) ([]domain.StationAggregate, []domain.Category) {
	categories := append([]domain.Category(nil), domain.CanonicalCategories...)
	seenCategory := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		seenCategory[c] = true
	}

	index := make(map[string]int)
	var aggs []domain.StationAggregate
	for _, rec := range records {
		if !seenCategory[rec.Category] {
			seenCategory[rec.Category] = true
			categories = append(categories, rec.Category)
		}

		i, ok := index[rec.Station]
		if !ok {
			i = len(aggs)
			index[rec.Station] = i
			aggs = append(aggs, domain.StationAggregate{
				Station:          rec.Station,
				TotalsByCategory: make(map[domain.Category]float64),
			})
		}
		aggs[i].TotalsByCategory[rec.Category] += rec.DurationSeconds
		aggs[i].TotalSeconds += rec.DurationSeconds
	}

	for i := range aggs {
		for _, c := range categories {
			if _, ok := aggs[i].TotalsByCategory[c]; !ok {
				aggs[i].TotalsByCategory[c] = 0
			}
		}
		if aggs[i].TotalSeconds > 0 {
			aggs[i].VARatio = aggs[i].TotalsByCategory[domain.CategoryVA] / aggs[i].TotalSeconds
		}
	}

	return aggs, categories
}

// ResolveTakt returns given when set, even when it is not positive, and the
// mean station total otherwise.
func ResolveTakt(aggs []domain.StationAggregate, given *float64) (float64, error) {
	if given != nil {
		return *given, nil
	}
	if len(aggs) == 0 {
		return 0, apperrors.NewEmptyInputError("no stations to derive takt time from")
	}

	var sum float64
	for _, a := range aggs {
		sum += a.TotalSeconds
	}
	return sum / float64(len(aggs)), nil
}

// FindBottleneck returns the station with the highest total. Ties go to the
// earliest station.
func FindBottleneck(aggs []domain.StationAggregate) (domain.Bottleneck, error) {
	if len(aggs) == 0 {
		return domain.Bottleneck{}, apperrors.NewEmptyInputError("no stations to compare")
	}

	best := 0
	for i, a := range aggs[1:] {
		if a.TotalSeconds > aggs[best].TotalSeconds {
			best = i + 1
		}
	}

	return domain.Bottleneck{
		Station:      aggs[best].Station,
		TotalSeconds: aggs[best].TotalSeconds,
		Index:        best,
	}, nil
}
