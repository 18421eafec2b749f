// Package bletext renders decoded Bluetooth Low Energy driver events as
// one-line, human-readable log text.
package bletext

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"bletext/internal/event"
	"bletext/internal/ioutil"
	"bletext/internal/processor"
	"bletext/internal/textual"
)

// Event is a decoded BLE event: an insertion-ordered container with the
// keys id, name and optionally adv_type, data, rssi, peer_addr, role.
type Event = event.Object

// NewEvent creates an empty Event
func NewEvent() *Event { return event.NewObject() }

// EventFromMap converts a plain map into an Event, sorting keys
func EventFromMap(m map[string]any) *Event { return event.FromMap(m) }

// ParseEvent decodes one JSON object, keeping key order
func ParseEvent(data []byte) (*Event, error) { return event.DecodeObject(data) }

var (
	// ErrInvalidEvent is returned by Text for a missing event or one without id or name
	ErrInvalidEvent = textual.ErrInvalidEvent
	// ErrTooDeep is returned for nesting deeper than textual.MaxDepth
	ErrTooDeep = textual.ErrTooDeep
)

// ToText renders ev as a single line. It returns "" for an invalid
// event after logging a diagnostic to slog.Default().
func ToText(ev *Event) string {
	s, _ := defaultFormatter.Text(ev)
	return s
}

var defaultFormatter = textual.New()

// Text is like ToText but also returns the reason when no text is produced.
func Text(ev *Event, logger *slog.Logger) (string, error) {
	return textual.New(textual.WithLogger(logger)).Text(ev)
}

// PeerAddress returns "<peer role> <ADDRESS>" for ev, e.g.
// "peripheral AA:BB:CC:DD:EE:FF" for an event seen by a central.
func PeerAddress(ev *Event) string {
	return textual.PeerAddress(ev)
}

// Result holds processing statistics.
type Result struct {
	InputBytes  int64
	OutputBytes int64
	OutputLines int64
	EventCount  int
	Written     int
	Filtered    int
	Skipped     int
}

// Option configures processing behavior.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	pipeline processor.Config
}

// WithLogger sets the logger receiving diagnostics and the final stats line.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPeerPrefix prefixes each line with the peer label and address.
func WithPeerPrefix() Option {
	return func(o *options) { o.pipeline.PeerPrefix = true }
}

// WithStrict makes processing fail on the first invalid event.
func WithStrict() Option {
	return func(o *options) { o.pipeline.Strict = true }
}

// WithRedact masks pairing and encryption keys (ltk, irk, passkey, ...)
// before formatting.
func WithRedact() Option {
	return func(o *options) { o.pipeline.Redact = true }
}

// WithInclude keeps only events whose label starts with one of prefixes.
func WithInclude(prefixes ...string) Option {
	return func(o *options) { o.pipeline.Include = append(o.pipeline.Include, prefixes...) }
}

// WithExclude drops events whose label starts with one of prefixes.
func WithExclude(prefixes ...string) Option {
	return func(o *options) { o.pipeline.Exclude = append(o.pipeline.Exclude, prefixes...) }
}

func applyOpts(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ProcessFile reads inputPath, formats its events, and writes to outputPath.
// If outputPath is "" or "-", it writes to stdout.
func ProcessFile(inputPath, outputPath string, opts ...Option) (*Result, error) {
	cfg := applyOpts(opts)

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	reader, err := event.NewReaderFromFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}

	var dest io.Writer = os.Stdout
	if outputPath != "" && outputPath != "-" {
		outFile, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("creating output file: %w", err)
		}
		defer outFile.Close()
		dest = outFile
	}

	res, err := run(reader, info.Size(), dest, cfg)
	if err != nil {
		return nil, err
	}
	logResult(cfg.logger, res, inputPath, outputPath)
	return res, nil
}

// Process reads events from r and writes one line per event to w.
func Process(r io.Reader, w io.Writer, opts ...Option) (*Result, error) {
	cfg := applyOpts(opts)

	inputData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	res, err := parseAndRun(inputData, w, cfg)
	if err != nil {
		return nil, err
	}
	logResult(cfg.logger, res, "", "")
	return res, nil
}

// ProcessBytes processes input bytes in memory and returns the output bytes.
func ProcessBytes(input []byte, opts ...Option) ([]byte, *Result, error) {
	cfg := applyOpts(opts)

	var buf bytes.Buffer
	res, err := parseAndRun(input, &buf, cfg)
	if err != nil {
		return nil, nil, err
	}
	logResult(cfg.logger, res, "", "")
	return buf.Bytes(), res, nil
}

func parseAndRun(input []byte, w io.Writer, cfg options) (*Result, error) {
	reader, err := event.NewReader(input)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}
	return run(reader, int64(len(input)), w, cfg)
}

func run(reader *event.Reader, inputSize int64, w io.Writer, cfg options) (*Result, error) {
	cw := &ioutil.CountWriter{W: w}
	formatter := defaultFormatter
	if cfg.logger != nil {
		formatter = textual.New(textual.WithLogger(cfg.logger))
	}
	pipeline := processor.NewPipeline(reader, cw, formatter, cfg.pipeline, cfg.logger)
	if err := pipeline.Run(); err != nil {
		return nil, fmt.Errorf("processing: %w", err)
	}

	stats := pipeline.Stats()
	return &Result{
		InputBytes:  inputSize,
		OutputBytes: cw.Count,
		OutputLines: cw.Lines,
		EventCount:  stats.Events,
		Written:     stats.Written,
		Filtered:    stats.Filtered,
		Skipped:     stats.Skipped,
	}, nil
}

func logResult(l *slog.Logger, r *Result, inPath, outPath string) {
	if l == nil {
		return
	}
	src := "input"
	if inPath != "" {
		src = inPath
	}
	dst := "output"
	if outPath != "" && outPath != "-" {
		dst = outPath
	}
	l.Info("events formatted",
		"src", src,
		"src_size", humanize.IBytes(uint64(r.InputBytes)),
		"dst", dst,
		"dst_size", humanize.IBytes(uint64(r.OutputBytes)),
		"events", r.EventCount,
		"written", r.Written,
		"filtered", r.Filtered,
		"skipped", r.Skipped,
	)
}
