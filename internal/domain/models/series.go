package models

import (
	"fmt"

	"github.com/guregu/null/v6"
)

// TimeSeries is a date-labelled numeric series. Labels are ascending and
// unique; a Value may be null where the source had no observation.
type TimeSeries struct {
	Labels []string     `json:"labels"`
	Values []null.Float `json:"values"`
}

// NewTimeSeries builds a series from plain values.
func NewTimeSeries(labels []string, values []float64) TimeSeries {
	vs := make([]null.Float, len(values))
	for i, v := range values {
		vs[i] = null.FloatFrom(v)
	}
	return TimeSeries{Labels: labels, Values: vs}
}

// Validate checks the label/value length invariant.
func (ts TimeSeries) Validate() error {
	if len(ts.Labels) != len(ts.Values) {
		return fmt.Errorf("series labels/values length mismatch: %d != %d", len(ts.Labels), len(ts.Values))
	}
	return nil
}

// Len returns the number of points.
func (ts TimeSeries) Len() int {
	return len(ts.Labels)
}

// Tail returns the last n points. The result shares no backing storage with ts.
func (ts TimeSeries) Tail(n int) TimeSeries {
	if n < 0 {
		n = 0
	}
	start := len(ts.Labels) - n
	if start < 0 {
		start = 0
	}
	return TimeSeries{
		Labels: append([]string(nil), ts.Labels[start:]...),
		Values: append([]null.Float(nil), ts.Values[start:]...),
	}
}

// Observation is one macro data point. Value is invalid for the provider's
// missing-value marker.
type Observation struct {
	Date  string     `json:"date"`
	Value null.Float `json:"value"`
}

// ScalarObservationSeries is a macro indicator: the latest usable value plus
// the chronological observations it was taken from.
type ScalarObservationSeries struct {
	Last         float64       `json:"last"`
	Observations []Observation `json:"observations"`
}

// Valid returns the observations carrying a usable value, in order.
func (s ScalarObservationSeries) Valid() []Observation {
	out := make([]Observation, 0, len(s.Observations))
	for _, o := range s.Observations {
		if o.Value.Valid {
			out = append(out, o)
		}
	}
	return out
}

// Headline is one news item.
type Headline struct {
	Title       string `json:"title"`
	Source      string `json:"source,omitempty"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}
