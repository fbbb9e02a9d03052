// Package blogpost implements the second pipeline stage: it turns a research
// briefing into a markdown blog post. Its input arrives from another agent,
// so it defensively re-parses inputs that still carry raw relayed envelopes
// before treating them as prose.
package blogpost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"a2apipe/host"
	"a2apipe/internal/metrics"
	"a2apipe/relay"
)

// maxTopicChars bounds the topic derived from the briefing's first line.
const maxTopicChars = 150

// Config holds blogpost agent configuration.
type Config struct {
	// OutputDir is where generated posts are saved. Empty disables saving.
	OutputDir string
	// Logger is the logger instance. Defaults to a no-op logger.
	Logger *zap.Logger
	// Metrics is the optional metrics collector.
	Metrics *metrics.Collector
	// now overrides the clock in tests.
	now func() time.Time
}

// Agent generates blog posts from research briefings.
type Agent struct {
	outputDir string
	logger    *zap.Logger
	recoverer *relay.Recoverer
	now       func() time.Time
}

// New creates a blogpost agent. cfg may be nil.
func New(cfg *Config) *Agent {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("agent", "blogpost"))
	now := cfg.now
	if now == nil {
		now = time.Now
	}
	return &Agent{
		outputDir: cfg.OutputDir,
		logger:    logger,
		recoverer: relay.NewRecoverer(logger, cfg.Metrics),
		now:       now,
	}
}

func (a *Agent) Name() string { return "BlogPost Generator Agent" }

func (a *Agent) Description() string {
	return "Transforms research content into a structured markdown blog post and saves it as an artifact."
}

func (a *Agent) Version() string { return "2.0.0" }

// Run generates the post and emits a summary of the result. When the input
// still contains raw relayed envelopes, it is recovered first; generating
// content from protocol JSON would silently produce garbage.
func (a *Agent) Run(ctx context.Context, input string, emit host.EmitFunc) error {
	research := input
	if strings.Contains(research, relay.StatusUpdateMarker) {
		a.logger.Warn("input carries raw relayed envelopes, recovering")
		research = a.recoverer.Recover(research)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	topic := deriveTopic(research)
	title := deriveTitle(topic)
	content := renderPost(title, topic, research)

	a.logger.Info("blog post generated",
		zap.String("title", title),
		zap.Int("chars", len(content)),
	)

	filename := ""
	if a.outputDir != "" {
		name, err := a.save(title, topic, content)
		if err != nil {
			// Saving is an artifact concern; the generated content is still
			// the invocation's result.
			a.logger.Error("failed to save blog post", zap.Error(err))
			filename = fmt.Sprintf("error saving file: %v", err)
		} else {
			filename = name
		}
	}

	summary := fmt.Sprintf(
		"Blog post successfully generated!\n\n"+
			"**Topic:** %s\n"+
			"**Title:** %s\n"+
			"**Content Length:** %d characters\n\n%s\n",
		topic, title, len(content), content,
	)
	if filename != "" {
		summary += fmt.Sprintf("\n---\nSaved to: %s\n", filename)
	}
	return emit(summary)
}

// deriveTopic takes the first line of the research content as the topic,
// truncated when the line runs long.
func deriveTopic(research string) string {
	topic := research
	if i := strings.IndexByte(research, '\n'); i >= 0 {
		topic = research[:i]
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "Blog Post Topic"
	}
	if len(topic) > maxTopicChars {
		topic = topic[:maxTopicChars] + "..."
	}
	return topic
}

func deriveTitle(topic string) string {
	title := strings.TrimPrefix(topic, "Research Topic:")
	return strings.TrimSpace(title) + ": Key Findings and Takeaways"
}

// renderPost builds the markdown body. Structure follows the standard shape:
// introduction, findings, takeaways, conclusion.
func renderPost(title, topic, research string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "## Introduction\n\nThis post summarizes what we learned about %s.\n\n", topic)
	fmt.Fprintf(&b, "## Findings\n\n%s\n\n", strings.TrimSpace(research))
	b.WriteString("## Key Takeaways\n\n" +
		"- The research above captures the current state of the topic\n" +
		"- Details and sources are preserved verbatim from the research stage\n\n")
	b.WriteString("## Conclusion\n\nGenerated from upstream research content.\n")
	return b.String()
}

// save writes the post to a timestamped markdown file with front matter.
func (a *Agent) save(title, topic, content string) (string, error) {
	now := a.now()
	filename := fmt.Sprintf("blog_%s_%s.md", now.Format("20060102_150405"), slugify(title))
	path := filepath.Join(a.outputDir, filename)

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "date: %s\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "topic: %q\n", topic)
	b.WriteString("generated_by: BlogPost Generator Agent\n")
	b.WriteString("---\n\n")
	b.WriteString(content)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// slugify lowercases the title and keeps a filesystem-safe prefix of it.
func slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}
