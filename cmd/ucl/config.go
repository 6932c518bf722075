package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/ucl/emit"
	"github.com/jacoelho/ucl/internal/exit"
)

var (
	ErrNoArguments  = errors.New("no arguments provided")
	ErrNoInputFiles = errors.New("no input files specified")
	ErrBadFormat    = errors.New("unknown output format")
)

// Config is the parsed command line for the ucl driver.
type Config struct {
	Inputs       []string
	OutputDir    string
	SchemaFile   string
	Format       emit.Format
	KeyLowercase bool
	ZeroCopy     bool
	RateLimit    float64
	Concurrency  int
}

func usage() string {
	return `ucl - parse, validate and re-emit UCL documents

Usage:
  ucl [flags] file [file...]

Flags:
  -out string        directory to write rendered output into (default: stdout only)
  -format string      output format: json, compact_json, config, yaml (default "json")
  -schema string       path to a UCL/JSON schema document to validate each input against
  -lowercase-keys      fold object keys to lowercase while parsing
  -zero-copy           borrow string bytes from the input instead of copying
  -rate-limit float    requests per second allowed for http(s) includes (0 = unlimited)
  -concurrency int     number of files to process at once (default 4)
`
}

// parseConfig parses args (as passed to main, args[0] is the program name)
// into a Config. A non-nil *exit.Result means the caller should print it
// and stop instead of running.
func parseConfig(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		outDir       = fs.String("out", "", "directory to write rendered output into")
		format       = fs.String("format", "json", "output format: json, compact_json, config, yaml")
		schemaFile   = fs.String("schema", "", "path to a schema document to validate each input against")
		lowercase    = fs.Bool("lowercase-keys", false, "fold object keys to lowercase while parsing")
		zeroCopy     = fs.Bool("zero-copy", false, "borrow string bytes from the input instead of copying")
		rateLimit    = fs.Float64("rate-limit", 0, "requests per second allowed for http(s) includes")
		concurrency  = fs.Int("concurrency", 4, "number of files to process at once")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, usage())
	}

	files := fs.Args()
	if len(files) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoInputFiles, usage())
	}

	f, err := parseFormat(*format)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, usage())
	}

	n := *concurrency
	if n <= 0 {
		n = 1
	}

	return &Config{
		Inputs:       files,
		OutputDir:    *outDir,
		SchemaFile:   *schemaFile,
		Format:       f,
		KeyLowercase: *lowercase,
		ZeroCopy:     *zeroCopy,
		RateLimit:    *rateLimit,
		Concurrency:  n,
	}, nil
}

func parseFormat(s string) (emit.Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return emit.JSON, nil
	case "compact_json", "compact":
		return emit.JSONCompact, nil
	case "config", "nginx":
		return emit.Config, nil
	case "yaml", "yml":
		return emit.YAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrBadFormat, s)
	}
}
