// Package sentiment attributes headline sentiment to tracked symbols.
package sentiment

import (
	"regexp"
	"strings"

	"FinScope/internal/domain/models"
)

// MaxHeadlines caps the matching headlines kept per symbol.
const MaxHeadlines = 5

// threshold is the absolute score a symbol needs before it leaves neutral.
const threshold = 0.5

// Mapper scores headlines per symbol. Symbols with no matching headline are
// absent from the result.
type Mapper interface {
	Map(headlines []models.Headline, symbols []string) map[string]models.NewsImpact
}

var defaultSynonyms = map[string][]string{
	"SPY":     {"s&p", "s&p 500", "sp500", "s and p"},
	"QQQ":     {"nasdaq"},
	"DIA":     {"dow", "dow jones"},
	"IWM":     {"russell"},
	"AAPL":    {"apple"},
	"MSFT":    {"microsoft"},
	"NVDA":    {"nvidia"},
	"TSLA":    {"tesla"},
	"AMZN":    {"amazon"},
	"GOOGL":   {"google", "alphabet"},
	"META":    {"meta", "facebook"},
	"AMD":     {"amd", "advanced micro"},
	"BTC-USD": {"bitcoin", "btc"},
	"XLE":     {"energy", "oil"},
}

var defaultPositive = []string{
	"surge", "rally", "rallies", "gain", "beat", "jump", "soar", "upgrade",
	"bullish", "record high", "rebound", "strong", "boost", "optimism", "climb",
}

var defaultNegative = []string{
	"fall", "drop", "plunge", "slump", "crash", "misses", "missed", "downgrade",
	"bearish", "recession", "selloff", "sell-off", "loss", "decline", "tumble",
	"weak", "fear",
}

// Lexicon is a substring word-list Mapper. Synonyms and sentiment words match
// case-insensitively and untokenized; the bare ticker only matches as an
// upper-case whole token.
type Lexicon struct {
	synonyms map[string][]string
	positive []string
	negative []string
}

// NewLexicon returns a Lexicon with the built-in synonym and word lists.
func NewLexicon() *Lexicon {
	return &Lexicon{
		synonyms: defaultSynonyms,
		positive: defaultPositive,
		negative: defaultNegative,
	}
}

// Score counts positive minus negative word occurrences in text.
func (l *Lexicon) Score(text string) int {
	t := strings.ToLower(text)
	score := 0
	for _, w := range l.positive {
		score += strings.Count(t, w)
	}
	for _, w := range l.negative {
		score -= strings.Count(t, w)
	}
	return score
}

// Terms returns the lower-case synonyms of a symbol.
func (l *Lexicon) Terms(symbol string) []string {
	return l.synonyms[models.NormalizeSymbol(symbol)]
}

// tickerPattern matches the upper-case ticker as a standalone token, so
// "DIA" never hits inside "Nvidia" or "media".
func tickerPattern(symbol string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^A-Za-z0-9])` + regexp.QuoteMeta(symbol) + `(?:$|[^A-Za-z0-9])`)
}

func (l *Lexicon) Map(headlines []models.Headline, symbols []string) map[string]models.NewsImpact {
	out := make(map[string]models.NewsImpact)
	for _, sym := range symbols {
		terms := l.Terms(sym)
		ticker := tickerPattern(models.NormalizeSymbol(sym))
		var (
			total   int
			matched []models.Headline
		)
		for _, h := range headlines {
			if !containsAny(strings.ToLower(h.Title), terms) && !ticker.MatchString(h.Title) {
				continue
			}
			total += l.Score(h.Title)
			if len(matched) < MaxHeadlines {
				matched = append(matched, h)
			}
		}
		if len(matched) == 0 {
			continue
		}
		out[models.NormalizeSymbol(sym)] = models.NewsImpact{
			Direction: classify(total),
			Score:     total,
			Headlines: matched,
		}
	}
	return out
}

func classify(score int) models.Direction {
	switch s := float64(score); {
	case s > threshold:
		return models.DirectionIncrease
	case s < -threshold:
		return models.DirectionDecrease
	default:
		return models.DirectionNeutral
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
