package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"bletext"
	"bletext/internal/config"
	"bletext/internal/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bletext", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Define flags
	outputFile := fs.String("o", "", "Output file (default: stdout)")
	output := fs.String("output", "", "Output file (default: stdout)")
	configPath := fs.String("config", "", "YAML config file")
	peer := fs.Bool("peer", false, "Prefix each line with the peer role and address")
	include := fs.String("include", "", "Comma-separated label prefixes to keep")
	exclude := fs.String("exclude", "", "Comma-separated label prefixes to drop")
	strict := fs.Bool("strict", false, "Fail on the first invalid event")
	redact := fs.Bool("redact", false, "Mask pairing keys (ltk, irk, passkey, ...)")
	logLevel := fs.String("log-level", "", "Log level: debug|info|warn|error")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bletext [flags] [input-file|-]\n\n")
		fmt.Fprintf(stderr, "Renders BLE driver events (JSON array or JSONL) as one text line per event\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  bletext events.json                          Process file, output to stdout\n")
		fmt.Fprintf(stderr, "  bletext -o events.log events.jsonl           Process file, output to file\n")
		fmt.Fprintf(stderr, "  bletext -peer -include GAP_EVT_CONN -        Read stdin, keep connection events\n")
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	rest := fs.Args()
	if len(rest) > 1 {
		fmt.Fprintf(stderr, "Error: at most one input file\n\n")
		fs.Usage()
		return 1
	}
	inputFile := "-"
	if len(rest) == 1 {
		inputFile = rest[0]
	}

	// Handle output flag aliases
	outPath := *outputFile
	if outPath == "" {
		outPath = *output
	}

	cfg, err := config.Read(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	// Flags win over config and environment
	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}
	if *peer {
		cfg.Output.PeerPrefix = true
	}
	if *strict {
		cfg.Output.Strict = true
	}
	if *redact {
		cfg.Output.Redact = true
	}
	if *include != "" {
		cfg.Filter.Include = config.SplitList(*include)
	}
	if *exclude != "" {
		cfg.Filter.Exclude = config.SplitList(*exclude)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log, closeLog, err := newLogger(cfg.Logger, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	opts := []bletext.Option{
		bletext.WithLogger(log),
		bletext.WithInclude(cfg.Filter.Include...),
		bletext.WithExclude(cfg.Filter.Exclude...),
	}
	if cfg.Output.PeerPrefix {
		opts = append(opts, bletext.WithPeerPrefix())
	}
	if cfg.Output.Strict {
		opts = append(opts, bletext.WithStrict())
	}
	if cfg.Output.Redact {
		opts = append(opts, bletext.WithRedact())
	}

	if err := process(inputFile, outPath, stdin, stdout, opts); err != nil {
		log.Error("processing failed", "error", err)
		return 1
	}
	return 0
}

// newLogger is logger.New with "stderr" bound to the given writer
func newLogger(cfg config.LoggerConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	if strings.EqualFold(cfg.Output, "stderr") {
		return logger.NewWithWriter(stderr, cfg), func() error { return nil }, nil
	}
	return logger.New(cfg)
}

func process(inputFile, outPath string, stdin io.Reader, stdout io.Writer, opts []bletext.Option) error {
	if inputFile != "-" && outPath != "" && outPath != "-" {
		_, err := bletext.ProcessFile(inputFile, outPath, opts...)
		return err
	}

	var r io.Reader = stdin
	if inputFile != "-" {
		f, err := os.Open(inputFile)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var w io.Writer = stdout
	if outPath != "" && outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err := bletext.Process(r, w, opts...)
	return err
}
