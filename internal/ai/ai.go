// Package ai wraps the external text-generation providers behind a single
// Complete(prompt) capability. The rest of the app treats the result as
// opaque text.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sadopc/tempo/internal/stats"
)

// Provider names accepted by NewProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local"
)

// Provider is one text-generation backend.
type Provider interface {
	// Complete sends the prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider for credential storage and logging.
	Name() string
}

// NewProvider builds the named provider. A missing credential for a
// non-local provider is rejected here, before any network call.
func NewProvider(name, model, credential string) (Provider, error) {
	switch name {
	case ProviderOpenAI:
		if credential == "" {
			return nil, fmt.Errorf("openai: API key required")
		}
		return NewOpenAIClient(credential, model), nil
	case ProviderAnthropic:
		if credential == "" {
			return nil, fmt.Errorf("anthropic: API key required")
		}
		return NewAnthropicClient(credential, model), nil
	case ProviderLocal:
		return NewLocalClient(WithLocalModel(model)), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", name)
	}
}

// BuildPrompt renders the week's aggregates into a summary request.
func BuildPrompt(daily []stats.DayPoint, perProject []stats.ProjectPoint, weekTotalSeconds int) string {
	var b strings.Builder
	b.WriteString("You are a productivity assistant. Summarize the following time-tracking week in a short, encouraging paragraph. Mention the busiest day and the top project.\n\n")

	fmt.Fprintf(&b, "Total tracked this week: %.1f hours\n\n", float64(weekTotalSeconds)/3600)

	b.WriteString("Hours per day:\n")
	for _, d := range daily {
		fmt.Fprintf(&b, "- %s: %.1fh\n", d.Date, d.Hours)
	}

	if len(perProject) > 0 {
		b.WriteString("\nTime per project:\n")
		for _, p := range perProject {
			fmt.Fprintf(&b, "- %s: %g%s\n", p.Name, p.Value, p.Unit)
		}
	}
	return b.String()
}
