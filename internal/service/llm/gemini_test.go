package llm

import (
	"context"
	"errors"
	"testing"

	"FinScope/internal/domain/service"
	applogger "FinScope/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	system, user string
	text         string
	err          error
}

func (f *fakeGenerator) generate(_ context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.text, f.err
}

func TestGeminiExplainer_NoKey(t *testing.T) {
	e, err := NewGeminiExplainer(context.Background(), "", "", 0, nil)
	require.NoError(t, err)

	out := e.Explain(context.Background(), service.ExplainRequest{Context: map[string]int{"a": 1}})
	assert.True(t, out.Failed)
	assert.Equal(t, "Gemini API key not configured.", out.Text)
}

func TestGeminiExplainer_PassesPersonaAndContext(t *testing.T) {
	gen := &fakeGenerator{text: "SPY is up."}
	e := &GeminiExplainer{gen: gen, log: applogger.NewNop()}

	out := e.Explain(context.Background(), service.ExplainRequest{
		Context:  map[string][]string{"symbols": {"SPY"}},
		Persona:  PersonaFor(true),
		Question: "Should I worry?",
	})

	assert.False(t, out.Failed)
	assert.Equal(t, "SPY is up.", out.Text)
	assert.Equal(t, PersonaBeginner, gen.system)
	assert.Contains(t, gen.user, `{"symbols":["SPY"]}`)
	assert.Contains(t, gen.user, "Should I worry?")
}

func TestGeminiExplainer_FailureIsText(t *testing.T) {
	e := &GeminiExplainer{gen: &fakeGenerator{err: errors.New("quota exceeded")}, log: applogger.NewNop()}

	out := e.Explain(context.Background(), service.ExplainRequest{Persona: PersonaStandard})
	assert.True(t, out.Failed)
	assert.Equal(t, "LLM failed: quota exceeded", out.Text)
}

func TestPersonaFor(t *testing.T) {
	assert.Equal(t, PersonaStandard, PersonaFor(false))
	assert.NotEqual(t, PersonaFor(false), PersonaFor(true))
}
