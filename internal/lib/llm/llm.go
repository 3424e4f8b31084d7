// Package llm holds the fixed prompt templates used for suggestions and the
// hosted completion client behind them.
package llm

import (
	"context"
	"errors"
	"strings"
)

// MaxOutputTokens caps every completion.
const MaxOutputTokens = 150

// ErrNotConfigured is returned by completers without credentials.
var ErrNotConfigured = errors.New("llm: no API key configured")

// Action names one of the suggestion templates.
type Action string

const (
	ActionGenerateIdeas            Action = "generateIdeas"
	ActionRefineStory              Action = "refineStory"
	ActionGeneratePersonaTraits    Action = "generatePersonaTraits"
	ActionGenerateJourneyNarrative Action = "generateJourneyNarrative"
)

// Prompt is a single completion request.
type Prompt struct {
	System    string
	User      string
	MaxTokens int32
}

// Completer produces text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Template turns user input into a prompt and supplies the text returned when
// the model answers with nothing.
type Template struct {
	Action   Action
	System   string
	Format   func(input string) string
	Fallback string
}

// Prompt renders the template for input.
func (t Template) Prompt(input string) Prompt {
	return Prompt{System: t.System, User: t.Format(input), MaxTokens: MaxOutputTokens}
}

func verbatim(input string) string { return input }

var templates = map[Action]Template{
	ActionGenerateIdeas: {
		Action:   ActionGenerateIdeas,
		System:   "You are a helpful assistant for generating user story ideas.",
		Format:   verbatim,
		Fallback: "No suggestions available.",
	},
	ActionRefineStory: {
		Action:   ActionRefineStory,
		System:   "You are a helpful assistant for refining user stories.",
		Format:   func(input string) string { return "Refine this user story: " + input },
		Fallback: "No refinement suggestions available.",
	},
	ActionGeneratePersonaTraits: {
		Action:   ActionGeneratePersonaTraits,
		System:   "You are a helpful assistant for describing user personas.",
		Format:   func(input string) string { return "Suggest goals, frustrations and traits for this persona: " + input },
		Fallback: "No persona traits available.",
	},
	ActionGenerateJourneyNarrative: {
		Action:   ActionGenerateJourneyNarrative,
		System:   "You are a helpful assistant for writing user journey narratives.",
		Format:   func(input string) string { return "Write a short narrative for this user journey: " + input },
		Fallback: "No journey narrative available.",
	},
}

// Lookup returns the template for action.
func Lookup(action string) (Template, bool) {
	t, ok := templates[Action(action)]
	return t, ok
}

// Generate runs a template through c, substituting the fallback for an
// empty answer.
func Generate(ctx context.Context, c Completer, t Template, input string) (string, error) {
	text, err := c.Complete(ctx, t.Prompt(input))
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return t.Fallback, nil
	}
	return text, nil
}
