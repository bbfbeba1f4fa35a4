package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"enrollscope/pkg/contracts/domain"
)

func point(year int, value int) domain.TimeSeriesPoint {
	return domain.TimeSeriesPoint{Year: year, DimensionValue: "Física", Value: value}
}

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name   string
		series []domain.TimeSeriesPoint
		want   float64
	}{
		{
			name:   "empty series",
			series: nil,
			want:   0,
		},
		{
			name:   "single year is degenerate",
			series: []domain.TimeSeriesPoint{point(2020, 100)},
			want:   0,
		},
		{
			name:   "zero first-year total is degenerate",
			series: []domain.TimeSeriesPoint{point(2019, 0), point(2020, 121)},
			want:   0,
		},
		{
			name:   "one year apart, 100 to 121 is 21 percent",
			series: []domain.TimeSeriesPoint{point(2019, 100), point(2020, 121)},
			want:   0.21,
		},
		{
			name:   "two years apart, 100 to 121 is 10 percent",
			series: []domain.TimeSeriesPoint{point(2018, 100), point(2020, 121)},
			want:   0.10,
		},
		{
			name: "per-year totals collapse across dimension values",
			series: []domain.TimeSeriesPoint{
				{Year: 2019, DimensionValue: "Física", Value: 60},
				{Year: 2019, DimensionValue: "Química", Value: 40},
				{Year: 2020, DimensionValue: "Física", Value: 70},
				{Year: 2020, DimensionValue: "Química", Value: 51},
			},
			want: 0.21,
		},
		{
			name:   "decline is negative",
			series: []domain.TimeSeriesPoint{point(2019, 100), point(2020, 81)},
			want:   -0.19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(tt.series)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestGrowthRate_TypeStableOverEmptyInput(t *testing.T) {
	// Always a float, never NaN or Inf.
	got := GrowthRate([]domain.TimeSeriesPoint{point(2019, 0), point(2020, 0)})
	assert.Equal(t, 0.0, got)
}
