package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

func record(station string, seconds float64, category domain.Category) domain.NormalizedRecord {
	return domain.NormalizedRecord{Station: station, DurationSeconds: seconds, Category: category}
}

func stations(totals map[string]float64, order ...string) []domain.StationAggregate {
	aggs := make([]domain.StationAggregate, len(order))
	for i, name := range order {
		aggs[i] = domain.StationAggregate{Station: name, TotalSeconds: totals[name]}
	}
	return aggs
}

func TestAggregate(t *testing.T) {
	records := []domain.NormalizedRecord{
		record("2", 30, domain.CategoryVA),
		record("1", 60, domain.CategoryVA),
		record("1", 20, domain.CategoryNVA),
		record("1", 10, domain.CategoryMuda),
		record("2", 5, "SETUP"),
		record("1", 4, ""),
	}

	aggs, categories := Aggregate(records)

	assert.Equal(t, []domain.Category{domain.CategoryVA, domain.CategoryNVA, domain.CategoryMuda, "SETUP", ""}, categories)
	require.Len(t, aggs, 2)

	assert.Equal(t, "2", aggs[0].Station)
	assert.Equal(t, 35.0, aggs[0].TotalSeconds)
	assert.InDelta(t, 30.0/35.0, aggs[0].VARatio, 1e-9)
	assert.Equal(t, 0.0, aggs[0].CategorySeconds(domain.CategoryMuda))

	assert.Equal(t, "1", aggs[1].Station)
	assert.Equal(t, 94.0, aggs[1].TotalSeconds)
	assert.Equal(t, 4.0, aggs[1].CategorySeconds(""))

	var recordSum, stationSum float64
	for _, r := range records {
		recordSum += r.DurationSeconds
	}
	for _, a := range aggs {
		stationSum += a.TotalSeconds
		assert.Len(t, a.TotalsByCategory, len(categories))

		var categorySum float64
		for _, v := range a.TotalsByCategory {
			categorySum += v
		}
		assert.InDelta(t, a.TotalSeconds, categorySum, 1e-9)
		assert.GreaterOrEqual(t, a.VARatio, 0.0)
		assert.LessOrEqual(t, a.VARatio, 1.0)
	}
	assert.InDelta(t, recordSum, stationSum, 1e-9)
}

func TestAggregate_ZeroTotalStation(t *testing.T) {
	aggs, _ := Aggregate([]domain.NormalizedRecord{record("A", 0, domain.CategoryVA)})

	require.Len(t, aggs, 1)
	assert.Equal(t, 0.0, aggs[0].VARatio)
}

func TestAggregate_Empty(t *testing.T) {
	aggs, categories := Aggregate(nil)

	assert.Empty(t, aggs)
	assert.Equal(t, domain.CanonicalCategories, categories)
}

func TestResolveTakt(t *testing.T) {
	aggs := stations(map[string]float64{"A": 100, "B": 200, "C": 300}, "A", "B", "C")

	takt, err := ResolveTakt(aggs, nil)
	require.NoError(t, err)
	assert.Equal(t, 200.0, takt)

	given := -5.0
	takt, err = ResolveTakt(aggs, &given)
	require.NoError(t, err)
	assert.Equal(t, -5.0, takt)

	_, err = ResolveTakt(nil, nil)
	assert.True(t, apperrors.IsEmptyInputError(err))
}

func TestFindBottleneck(t *testing.T) {
	aggs := stations(map[string]float64{"A": 150, "B": 300, "C": 300}, "A", "B", "C")

	b, err := FindBottleneck(aggs)

	require.NoError(t, err)
	assert.Equal(t, domain.Bottleneck{Station: "B", TotalSeconds: 300, Index: 1}, b)

	_, err = FindBottleneck(nil)
	assert.True(t, apperrors.IsEmptyInputError(err))
}
