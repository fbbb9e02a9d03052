// Package research implements the first pipeline stage: a deep-search style
// agent that turns a topic into a structured research briefing. The briefing
// itself is a deterministic template; the interesting behavior is how it is
// streamed, one section per chunk.
package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"a2apipe/host"
)

// Agent produces research briefings for topics.
type Agent struct {
	logger *zap.Logger
}

// New creates a research agent. logger may be nil.
func New(logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{logger: logger.With(zap.String("agent", "deepsearch"))}
}

func (a *Agent) Name() string { return "DeepSearch Research Agent" }

func (a *Agent) Description() string {
	return "Researches a topic and produces a structured briefing with summary, key insights, and sources."
}

func (a *Agent) Version() string { return "2.0.0" }

// Run emits the briefing section by section. Each section is one chunk, so a
// consumer sees partial results as they are produced.
func (a *Agent) Run(ctx context.Context, input string, emit host.EmitFunc) error {
	topic := strings.TrimSpace(input)
	if topic == "" {
		return fmt.Errorf("research: empty topic")
	}
	a.logger.Info("researching topic", zap.String("topic", truncate(topic, 120)))

	for _, section := range briefingSections(topic) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := emit(section); err != nil {
			return fmt.Errorf("research: emit failed: %w", err)
		}
	}
	return nil
}

// briefingSections renders the briefing for a topic. The shape mirrors what a
// search-backed research workflow returns: a titled summary, insight bullets,
// recent developments, and a source list.
func briefingSections(topic string) []string {
	return []string{
		fmt.Sprintf("Research Topic: %s\n\n", topic),
		fmt.Sprintf("Executive Summary:\n%s is an active area with steady progress across industry and research. "+
			"This briefing collects the current state, notable developments, and open questions.\n\n", topic),
		fmt.Sprintf("Key Insights:\n"+
			"- Adoption of %s continues to grow across sectors\n"+
			"- Tooling and standards around %s are maturing\n"+
			"- Open challenges remain in reliability and cost\n\n", topic, topic),
		fmt.Sprintf("Recent Developments:\n"+
			"- New implementations and benchmarks published this year\n"+
			"- Growing ecosystem of integrations for %s\n\n", topic),
		"Sources: industry reports, conference proceedings, project changelogs\n",
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
