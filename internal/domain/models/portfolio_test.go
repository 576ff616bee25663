package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportInput_Selection(t *testing.T) {
	tests := []struct {
		name        string
		req         ReportRequest
		wantSymbols []string
		wantWeights WeightMap
	}{
		{
			name:        "symbols are normalised and deduplicated",
			req:         ReportRequest{Symbols: []string{" spy", "QQQ", "spy", ""}},
			wantSymbols: []string{"SPY", "QQQ"},
		},
		{
			name: "positions carry normalised weights",
			req: ReportRequest{Positions: []Position{
				{Symbol: "spy", Weight: 3},
				{Symbol: "QQQ", Weight: 1},
			}},
			wantSymbols: []string{"SPY", "QQQ"},
			wantWeights: WeightMap{"SPY": 0.75, "QQQ": 0.25},
		},
		{
			name:        "portfolio map sorted by symbol",
			req:         ReportRequest{Portfolio: map[string]float64{"b": 1, "a": 1}},
			wantSymbols: []string{"A", "B"},
			wantWeights: WeightMap{"A": 0.5, "B": 0.5},
		},
		{
			name:        "symbols win over positions",
			req:         ReportRequest{Symbols: []string{"AAPL"}, Positions: []Position{{Symbol: "MSFT", Weight: 1}}},
			wantSymbols: []string{"AAPL"},
		},
		{
			name:        "empty input falls back to default",
			req:         ReportRequest{},
			wantSymbols: []string{"AMD"},
		},
		{
			name:        "unusable positions fall back to default",
			req:         ReportRequest{Positions: []Position{{Symbol: "SPY", Weight: 0}}},
			wantSymbols: []string{"AMD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := tt.req.Input().Selection("amd")
			assert.Equal(t, tt.wantSymbols, sel.Symbols)
			if tt.wantWeights == nil {
				assert.Nil(t, sel.Weights)
				return
			}
			require.Len(t, sel.Weights, len(tt.wantWeights))
			for k, v := range tt.wantWeights {
				assert.InDelta(t, v, sel.Weights[k], 1e-9)
			}
		})
	}
}

func TestWeightMap_Restrict(t *testing.T) {
	w := WeightMap{"A": 0.5, "B": 0.3, "C": 0.2}

	got := w.Restrict([]string{"A", "B"})
	assert.InDelta(t, 0.625, got["A"], 1e-9)
	assert.InDelta(t, 0.375, got["B"], 1e-9)
	assert.NotContains(t, got, "C")

	var equal WeightMap
	eq := equal.Restrict([]string{"X", "Y"})
	assert.InDelta(t, 0.5, eq["X"], 1e-9)
	assert.InDelta(t, 0.5, eq["Y"], 1e-9)

	positions := got.Positions([]string{"B", "A", "Z"})
	require.Len(t, positions, 2)
	assert.Equal(t, "B", positions[0].Symbol)
	assert.InDelta(t, 0.375, positions[0].Weight, 1e-9)
	assert.Equal(t, "A", positions[1].Symbol)
}

func TestTimeSeries_TailAndValidate(t *testing.T) {
	ts := NewTimeSeries([]string{"d1", "d2", "d3"}, []float64{1, 2, 3})
	require.NoError(t, ts.Validate())

	tail := ts.Tail(2)
	assert.Equal(t, []string{"d2", "d3"}, tail.Labels)
	assert.Equal(t, 3.0, tail.Values[1].Float64)
	assert.Equal(t, 3, ts.Tail(10).Len())

	bad := TimeSeries{Labels: []string{"d1"}}
	assert.Error(t, bad.Validate())
}
