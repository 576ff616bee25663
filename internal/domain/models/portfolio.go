package models

import (
	"math"
	"sort"
	"strings"
)

// Position is a symbol with a relative portfolio weight.
type Position struct {
	Symbol string  `json:"symbol" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
}

// WeightMap maps symbols to weights summing to 1.0 across its keys. A nil
// WeightMap means equal weight.
type WeightMap map[string]float64

// NewWeightMap normalises positions into a WeightMap. Positions with a blank
// symbol or a non-positive weight are skipped; repeated symbols accumulate.
// Returns nil when nothing usable remains.
func NewWeightMap(positions []Position) WeightMap {
	raw := make(map[string]float64, len(positions))
	for _, p := range positions {
		sym := NormalizeSymbol(p.Symbol)
		if sym == "" || !(p.Weight > 0) || math.IsInf(p.Weight, 0) {
			continue
		}
		raw[sym] += p.Weight
	}
	return normalizeWeights(raw)
}

// EqualWeights returns 1/N for each symbol.
func EqualWeights(symbols []string) WeightMap {
	if len(symbols) == 0 {
		return nil
	}
	w := make(WeightMap, len(symbols))
	share := 1.0 / float64(len(symbols))
	for _, s := range symbols {
		w[s] = share
	}
	return w
}

// Restrict renormalises the weights over the given symbols. Symbols absent
// from w are excluded. A nil receiver yields equal weights over symbols.
func (w WeightMap) Restrict(symbols []string) WeightMap {
	if w == nil {
		return EqualWeights(symbols)
	}
	raw := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		if v, ok := w[s]; ok {
			raw[s] = v
		}
	}
	return normalizeWeights(raw)
}

// Positions renders the map as positions in the order of symbols.
func (w WeightMap) Positions(symbols []string) []Position {
	out := make([]Position, 0, len(symbols))
	for _, s := range symbols {
		if v, ok := w[s]; ok {
			out = append(out, Position{Symbol: s, Weight: v})
		}
	}
	return out
}

func normalizeWeights(raw map[string]float64) WeightMap {
	var sum float64
	for _, v := range raw {
		sum += v
	}
	if len(raw) == 0 || !(sum > 0) {
		return nil
	}
	w := make(WeightMap, len(raw))
	for s, v := range raw {
		w[s] = v / sum
	}
	return w
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// InputKind tags which request shape a ReportInput carries.
type InputKind string

const (
	InputSymbols   InputKind = "symbols"
	InputPositions InputKind = "positions"
	InputPortfolio InputKind = "portfolio"
)

// ReportInput is the resolved request: exactly one of Symbols, Positions or
// Portfolio is meaningful, as selected by Kind.
type ReportInput struct {
	Kind      InputKind
	Symbols   []string
	Positions []Position
	Portfolio map[string]float64
	Fast      bool
	Beginner  bool
}

// Selection is what a run operates on. Weights is nil for equal weight.
type Selection struct {
	Symbols []string  `json:"symbols"`
	Weights WeightMap `json:"weights"`
}

// Selection normalises the input. Symbols are upper-cased and de-duplicated
// in first-seen order; an empty result falls back to defaultSymbol.
func (in ReportInput) Selection(defaultSymbol string) Selection {
	var sel Selection
	switch in.Kind {
	case InputPositions:
		sel.Weights = NewWeightMap(in.Positions)
		syms := make([]string, 0, len(in.Positions))
		for _, p := range in.Positions {
			if _, ok := sel.Weights[NormalizeSymbol(p.Symbol)]; ok {
				syms = append(syms, p.Symbol)
			}
		}
		sel.Symbols = uniqueSymbols(syms)
	case InputPortfolio:
		positions := make([]Position, 0, len(in.Portfolio))
		for sym, w := range in.Portfolio {
			positions = append(positions, Position{Symbol: sym, Weight: w})
		}
		sel.Weights = NewWeightMap(positions)
		sel.Symbols = sortedKeys(sel.Weights)
	default:
		sel.Symbols = uniqueSymbols(in.Symbols)
	}

	if len(sel.Symbols) == 0 {
		sel.Weights = nil
		if sym := NormalizeSymbol(defaultSymbol); sym != "" {
			sel.Symbols = []string{sym}
		}
	}
	return sel
}

func uniqueSymbols(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = NormalizeSymbol(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func sortedKeys(w WeightMap) []string {
	keys := make([]string, 0, len(w))
	for k := range w {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
