package usecase

import (
	"context"
	"strings"

	"FinScope/internal/domain/models"
	"FinScope/internal/domain/service"
	"FinScope/internal/service/llm"
)

// NoReportAnswer is the chat reply when nothing has been generated yet.
const NoReportAnswer = "No report is available yet. Generate a report first, then ask me about it."

// ChatService answers questions about the latest report.
type ChatService struct {
	last      *LastReportStore
	explainer service.Explainer
}

func NewChatService(last *LastReportStore, explainer service.Explainer) *ChatService {
	return &ChatService{last: last, explainer: explainer}
}

// Ask answers the last user message using the latest report as context.
func (s *ChatService) Ask(ctx context.Context, messages []models.ChatMessage) service.Explanation {
	report, _, ok := s.last.Latest()
	if !ok {
		return service.Explanation{Text: NoReportAnswer}
	}

	var question string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			question = strings.TrimSpace(messages[i].Content)
			break
		}
	}
	return s.explainer.Explain(ctx, service.ExplainRequest{
		Context: map[string]interface{}{
			"report":   report,
			"messages": messages,
		},
		Persona:  llm.PersonaChat,
		Question: question,
	})
}
