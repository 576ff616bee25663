package usecase

import (
	"fmt"
	"sort"
	"strings"

	"FinScope/internal/domain/models"
)

// SimpleExplanation renders a short rule-based summary of the report. It only
// reads fields that are present and never depends on the LLM.
func SimpleExplanation(r *models.Report) string {
	if r == nil {
		return ""
	}
	var lines []string

	symbols := make([]string, 0, len(r.AssetOverview))
	for sym := range r.AssetOverview {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	for _, sym := range symbols {
		ov := r.AssetOverview[sym]
		line := fmt.Sprintf("%s last closed at %.2f", sym, ov.Last)
		if ov.ChangePct.Valid {
			line += fmt.Sprintf(", %s %.2f%% from the previous close", upDown(ov.ChangePct.Float64), abs(ov.ChangePct.Float64))
		}
		if t, ok := r.Technicals[sym]; ok {
			if t.SMATrend != nil {
				line += fmt.Sprintf("; the short-term trend is %s", *t.SMATrend)
			}
			if t.Vol20Pct.Valid {
				line += fmt.Sprintf(" with daily swings of about %.1f%%", t.Vol20Pct.Float64)
			}
		}
		lines = append(lines, line+".")
	}

	var macro []string
	if r.Macro.TenYearYieldPct.Valid {
		macro = append(macro, fmt.Sprintf("the 10-year Treasury yield is %.2f%%", r.Macro.TenYearYieldPct.Float64))
	}
	if r.Macro.CPIYoYPct.Valid {
		macro = append(macro, fmt.Sprintf("inflation is running at %.1f%% year over year", r.Macro.CPIYoYPct.Float64))
	}
	if r.Macro.UnemploymentRatePct.Valid {
		macro = append(macro, fmt.Sprintf("unemployment is %.1f%%", r.Macro.UnemploymentRatePct.Float64))
	}
	if r.Macro.VIXLast.Valid {
		macro = append(macro, fmt.Sprintf("the VIX fear gauge reads %.1f (%s)", r.Macro.VIXLast.Float64, vixMood(r.Macro.VIXLast.Float64)))
	}
	if len(macro) > 0 {
		lines = append(lines, "In the wider economy, "+strings.Join(macro, ", ")+".")
	}

	if len(r.NewsImpact) > 0 {
		news := make([]string, 0, len(r.NewsImpact))
		for sym, ni := range r.NewsImpact {
			if ni.Direction == models.DirectionNeutral {
				continue
			}
			news = append(news, fmt.Sprintf("%s leans %s", sym, newsLean(ni.Direction)))
		}
		sort.Strings(news)
		if len(news) > 0 {
			lines = append(lines, "Headlines: "+strings.Join(news, ", ")+".")
		}
	}

	if r.Invest != nil && r.Invest.Error == "" && r.Invest.Signal != "" {
		lines = append(lines, fmt.Sprintf("The investment signal is %q with %.0f%% confidence.", r.Invest.Signal, r.Invest.Confidence*100))
	}

	if pf := r.PersonalFinance; pf != nil && pf.Error == "" && pf.SavingsRatePct.Valid {
		lines = append(lines, fmt.Sprintf("Over the last %d days you saved %.0f%% of your income.", pf.WindowDays, pf.SavingsRatePct.Float64))
	}

	if len(lines) == 0 {
		return "Not enough data for a summary yet."
	}
	return strings.Join(lines, " ")
}

func upDown(v float64) string {
	if v < 0 {
		return "down"
	}
	return "up"
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func vixMood(v float64) string {
	switch {
	case v >= 30:
		return "markets are nervous"
	case v >= 20:
		return "some caution"
	default:
		return "markets are calm"
	}
}

func newsLean(d models.Direction) string {
	if d == models.DirectionIncrease {
		return "positive"
	}
	return "negative"
}
