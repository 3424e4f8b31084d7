package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	got   Prompt
	reply string
	err   error
}

func (s *stubCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	s.got = p
	return s.reply, s.err
}

func TestLookup(t *testing.T) {
	for _, action := range []string{"generateIdeas", "refineStory", "generatePersonaTraits", "generateJourneyNarrative"} {
		tmpl, ok := Lookup(action)
		require.True(t, ok, action)
		assert.Equal(t, Action(action), tmpl.Action)
		assert.NotEmpty(t, tmpl.Fallback)
	}

	_, ok := Lookup("summarize")
	assert.False(t, ok)
}

func TestGenerateRefineStory(t *testing.T) {
	tmpl, _ := Lookup("refineStory")
	stub := &stubCompleter{reply: "  As a shopper, I want to save my cart.\n"}

	got, err := Generate(context.Background(), stub, tmpl, "save cart")
	require.NoError(t, err)

	assert.Equal(t, "As a shopper, I want to save my cart.", got)
	assert.Equal(t, Prompt{
		System:    "You are a helpful assistant for refining user stories.",
		User:      "Refine this user story: save cart",
		MaxTokens: 150,
	}, stub.got)
}

func TestGenerateFallback(t *testing.T) {
	tmpl, _ := Lookup("generateIdeas")

	got, err := Generate(context.Background(), &stubCompleter{reply: " "}, tmpl, "checkout")
	require.NoError(t, err)
	assert.Equal(t, "No suggestions available.", got)
}

func TestGenerateError(t *testing.T) {
	tmpl, _ := Lookup("generateIdeas")

	_, err := Generate(context.Background(), Unconfigured{}, tmpl, "checkout")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = NewGenAI(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
