package processor

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bletext/internal/event"
	"bletext/internal/textual"
	"bletext/internal/transform"
)

// Config controls how the pipeline writes events
type Config struct {
	PeerPrefix bool     // prefix each line with "<role> <ADDRESS>: "
	Strict     bool     // stop at the first invalid event
	Include    []string // label prefixes to keep
	Exclude    []string // label prefixes to drop
	Redact     bool     // mask key material (ltk, irk, passkey, ...)
}

// Stats counts what happened to the events of one run
type Stats struct {
	Events   int // events read
	Written  int // lines written
	Filtered int // dropped by the label filter
	Skipped  int // invalid events, only when not strict
}

// Pipeline formats decoded events and writes one line per event
type Pipeline struct {
	reader     *event.Reader
	writer     *event.Writer
	formatter  *textual.Formatter
	filter     *Filter
	peerPrefix bool
	strict     bool
	redact     bool
	logger     *slog.Logger
	stats      Stats
}

// NewPipeline creates a new processing pipeline
func NewPipeline(reader *event.Reader, w io.Writer, formatter *textual.Formatter, cfg Config, logger *slog.Logger) *Pipeline {
	if formatter == nil {
		formatter = textual.New(textual.WithLogger(logger))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		reader:     reader,
		writer:     event.NewWriter(w),
		formatter:  formatter,
		filter:     NewFilter(cfg.Include, cfg.Exclude),
		peerPrefix: cfg.PeerPrefix,
		strict:     cfg.Strict,
		redact:     cfg.Redact,
		logger:     logger,
	}
}

// Run processes all events
func (p *Pipeline) Run() error {
	for i, ev := range p.reader.AllEvents() {
		p.stats.Events++

		if !p.filter.Allow(ev) {
			p.stats.Filtered++
			continue
		}

		if p.redact {
			ev = transform.StripSecrets(ev)
		}

		line, err := p.formatter.Text(ev)
		if err != nil {
			if p.strict {
				return fmt.Errorf("event %d: %w", i+1, err)
			}
			p.stats.Skipped++
			p.logger.Debug("event skipped", "index", i+1, "error", err)
			continue
		}

		if p.peerPrefix {
			line = withPeer(ev, line)
		}

		if err := p.writer.WriteLine(line); err != nil {
			return fmt.Errorf("writing event %d: %w", i+1, err)
		}
		p.stats.Written++
	}

	return nil
}

// Stats returns the counters of the last Run
func (p *Pipeline) Stats() Stats {
	return p.stats
}

func withPeer(ev *event.Object, line string) string {
	peer := strings.TrimSpace(textual.PeerAddress(ev))
	if peer == "" {
		return line
	}
	return peer + ": " + line
}
