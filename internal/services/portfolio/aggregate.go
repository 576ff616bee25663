// Package portfolio combines per-symbol series into a weighted composite.
package portfolio

import (
	"errors"
	"sort"

	"FinScope/internal/domain/models"

	"github.com/guregu/null/v6"
)

// ErrNoSeries is returned when there is nothing to aggregate.
var ErrNoSeries = errors.New("portfolio: no series to aggregate")

// Aggregate aligns the series on the sorted union of their labels and sums
// weight*value per label over the symbols that have a value there. A label
// with no contributors is null. Leading and trailing nulls are trimmed;
// interior gaps are kept. Weights are renormalised over the input symbols; a
// nil map means equal weight.
func Aggregate(series map[string]models.TimeSeries, weights models.WeightMap) (models.TimeSeries, error) {
	if len(series) == 0 {
		return models.TimeSeries{}, ErrNoSeries
	}

	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	weights = weights.Restrict(symbols)
	if weights == nil {
		weights = models.EqualWeights(symbols)
	}

	byLabel := make(map[string]map[string]null.Float, 64)
	for _, sym := range symbols {
		ts := series[sym]
		if err := ts.Validate(); err != nil {
			return models.TimeSeries{}, err
		}
		for i, label := range ts.Labels {
			row, ok := byLabel[label]
			if !ok {
				row = make(map[string]null.Float, len(symbols))
				byLabel[label] = row
			}
			row[sym] = ts.Values[i]
		}
	}

	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make([]null.Float, len(labels))
	for i, label := range labels {
		var (
			sum   float64
			count int
		)
		for sym, v := range byLabel[label] {
			w, ok := weights[sym]
			if !ok || !v.Valid {
				continue
			}
			sum += w * v.Float64
			count++
		}
		if count > 0 {
			values[i] = null.FloatFrom(sum)
		}
	}

	return trim(models.TimeSeries{Labels: labels, Values: values}), nil
}

func trim(ts models.TimeSeries) models.TimeSeries {
	first, last := -1, -1
	for i, v := range ts.Values {
		if v.Valid {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return models.TimeSeries{Labels: []string{}, Values: []null.Float{}}
	}
	return models.TimeSeries{
		Labels: ts.Labels[first : last+1],
		Values: ts.Values[first : last+1],
	}
}
