package models

// ReportRequest is the HTTP body of a report request. At most one of
// Symbols, Positions or Portfolio is used, in that order of precedence.
type ReportRequest struct {
	Symbols   []string           `json:"symbols" validate:"omitempty,max=25,dive,max=32"`
	Positions []Position         `json:"positions" validate:"omitempty,max=25,dive"`
	Portfolio map[string]float64 `json:"portfolio" validate:"omitempty,max=25"`
	Fast      bool               `json:"fast"`
	Beginner  bool               `json:"beginner"`
}

// Input resolves the tagged variant.
func (r ReportRequest) Input() ReportInput {
	in := ReportInput{Fast: r.Fast, Beginner: r.Beginner}
	switch {
	case len(r.Symbols) > 0:
		in.Kind, in.Symbols = InputSymbols, r.Symbols
	case len(r.Positions) > 0:
		in.Kind, in.Positions = InputPositions, r.Positions
	case len(r.Portfolio) > 0:
		in.Kind, in.Portfolio = InputPortfolio, r.Portfolio
	default:
		in.Kind = InputSymbols
	}
	return in
}

// ChatMessage is one turn of a conversation about the latest report.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required,max=4000"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=20,dive"`
}

// ShareRequest optionally carries a report; the latest one is shared otherwise.
type ShareRequest struct {
	Report     *Report `json:"report"`
	TTLSeconds int     `json:"ttl_seconds" default:"0"`
}
