package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinScope/internal/domain/service"
	applogger "FinScope/pkg/logger"

	"google.golang.org/genai"
)

const (
	msgNoAPIKey = "Gemini API key not configured."
	msgFailed   = "LLM failed: %v"
)

// generator is the model call behind GeminiExplainer.
type generator interface {
	generate(ctx context.Context, system, user string) (string, error)
}

// GeminiExplainer narrates analytics with Gemini.
type GeminiExplainer struct {
	gen     generator
	timeout time.Duration
	log     *applogger.Logger
}

// NewGeminiExplainer builds the explainer. An empty apiKey yields an
// explainer that always reports the missing key.
func NewGeminiExplainer(ctx context.Context, apiKey, model string, timeout time.Duration, l *applogger.Logger) (*GeminiExplainer, error) {
	if l == nil {
		l = applogger.NewNop()
	}
	e := &GeminiExplainer{timeout: timeout, log: l}
	if apiKey == "" {
		l.Warn("gemini api key not configured, explanations disabled")
		return e, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	e.gen = &geminiGenerator{client: client, model: model}
	return e, nil
}

func (e *GeminiExplainer) Explain(ctx context.Context, req service.ExplainRequest) service.Explanation {
	if e.gen == nil {
		return service.Explanation{Text: msgNoAPIKey, Failed: true}
	}

	payload, err := json.Marshal(req.Context)
	if err != nil {
		return service.Explanation{Text: fmt.Sprintf(msgFailed, err), Failed: true}
	}
	var user strings.Builder
	user.WriteString("Context JSON:\n")
	user.Write(payload)
	if q := strings.TrimSpace(req.Question); q != "" {
		user.WriteString("\n\nQuestion:\n")
		user.WriteString(q)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := e.gen.generate(ctx, req.Persona, user.String())
	if err != nil {
		e.log.Warn("llm explanation failed", applogger.Error(err), applogger.Duration("duration_ms", time.Since(start)))
		return service.Explanation{Text: fmt.Sprintf(msgFailed, err), Failed: true}
	}
	e.log.Debug("llm explanation generated", applogger.Int("chars", len(text)), applogger.Duration("duration_ms", time.Since(start)))
	return service.Explanation{Text: text}
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) generate(ctx context.Context, system, user string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					out.WriteString(part.Text)
				}
			}
		}
	}
	if out.Len() == 0 {
		return "", errors.New("empty response from model")
	}
	return strings.TrimSpace(out.String()), nil
}
