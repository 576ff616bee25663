package sentiment

import (
	"fmt"
	"testing"

	"FinScope/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicon_NasdaqRally(t *testing.T) {
	lx := NewLexicon()
	out := lx.Map([]models.Headline{{Title: "Tech stocks surge as Nasdaq rallies"}}, []string{"QQQ"})

	impact, ok := out["QQQ"]
	require.True(t, ok)
	assert.Greater(t, impact.Score, 0)
	assert.Equal(t, models.DirectionIncrease, impact.Direction)
	assert.Len(t, impact.Headlines, 1)
}

func TestLexicon_Negative(t *testing.T) {
	lx := NewLexicon()
	out := lx.Map([]models.Headline{
		{Title: "S&P 500 slumps on recession fear"},
	}, []string{"SPY"})
	require.Contains(t, out, "SPY")
	assert.Equal(t, models.DirectionDecrease, out["SPY"].Direction)
	assert.Equal(t, -3, out["SPY"].Score)
}

func TestLexicon_NeutralAndOmitted(t *testing.T) {
	lx := NewLexicon()
	out := lx.Map([]models.Headline{
		{Title: "Apple gains while Apple shares fall"},
	}, []string{"AAPL", "MSFT"})

	require.Contains(t, out, "AAPL")
	assert.Equal(t, models.DirectionNeutral, out["AAPL"].Direction)
	assert.Equal(t, 0, out["AAPL"].Score)
	assert.NotContains(t, out, "MSFT")
}

func TestLexicon_TickerMatchAndCap(t *testing.T) {
	lx := NewLexicon()
	var hs []models.Headline
	for i := 0; i < 8; i++ {
		hs = append(hs, models.Headline{Title: fmt.Sprintf("XYZ update %d", i)})
	}
	out := lx.Map(hs, []string{"xyz"})
	require.Contains(t, out, "XYZ")
	assert.Len(t, out["XYZ"].Headlines, MaxHeadlines)
}

func TestLexicon_Score(t *testing.T) {
	lx := NewLexicon()
	assert.Equal(t, 0, lx.Score("Markets flat"))
	assert.Equal(t, 2, lx.Score("Stocks JUMP to a record high"))
}

func TestLexicon_TickerNeedsWholeToken(t *testing.T) {
	lx := NewLexicon()
	tests := []struct {
		name    string
		title   string
		symbols []string
		want    []string
	}{
		{name: "inside company name", title: "Nvidia shares surge on record AI demand", symbols: []string{"DIA", "SPY", "IWM"}, want: nil},
		{name: "inside common word", title: "Social media stocks rally", symbols: []string{"DIA"}, want: nil},
		{name: "prefix of word", title: "Spyware maker shares jump", symbols: []string{"SPY"}, want: nil},
		{name: "lower-case ticker", title: "why spy and dia lag", symbols: []string{"SPY", "DIA"}, want: nil},
		{name: "standalone ticker", title: "SPY climbs; DIA flat", symbols: []string{"SPY", "DIA", "IWM"}, want: []string{"SPY", "DIA"}},
		{name: "synonym still matches", title: "Dow Jones rallies", symbols: []string{"DIA"}, want: []string{"DIA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := lx.Map([]models.Headline{{Title: tt.title}}, tt.symbols)
			assert.Len(t, out, len(tt.want))
			for _, sym := range tt.want {
				assert.Contains(t, out, sym)
			}
		})
	}
}
