// Command ucl parses one or more UCL documents, optionally validates each
// against a schema, and re-emits them in the requested output format.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jacoelho/ucl/emit"
	"github.com/jacoelho/ucl/fetch"
	"github.com/jacoelho/ucl/internal/exit"
	"github.com/jacoelho/ucl/parser"
	"github.com/jacoelho/ucl/schema"
	"github.com/jacoelho/ucl/value"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, exitResult := parseConfig(os.Args)
	if exitResult != nil {
		exitResult.Print()
		return exitResult.ExitCode
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var schemaDoc *value.Value
	if cfg.SchemaFile != "" {
		doc, err := loadDocument(cfg.SchemaFile, cfg.KeyLowercase, cfg.ZeroCopy, cfg.RateLimit)
		if err != nil {
			exit.Errorf("Error: loading schema %s: %v", cfg.SchemaFile, err).Print()
			return 1
		}
		schemaDoc = doc
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	for _, in := range cfg.Inputs {
		g.Go(func() error {
			return processFile(in, cfg, schemaDoc)
		})
	}

	if err := g.Wait(); err != nil {
		exit.Errorf("Error: %v", err).Print()
		return 1
	}
	return 0
}

func processFile(path string, cfg *Config, schemaDoc *value.Value) error {
	doc, err := loadDocument(path, cfg.KeyLowercase, cfg.ZeroCopy, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer value.Unref(doc)

	if schemaDoc != nil {
		ok, verr := schema.Validate(schemaDoc, doc)
		if !ok {
			return fmt.Errorf("%s: schema validation failed: %w", path, verr)
		}
	}

	rendered, err := emit.Emit(doc, cfg.Format)
	if err != nil {
		return fmt.Errorf("%s: rendering output: %w", path, err)
	}

	if cfg.OutputDir == "" {
		os.Stdout.Write(rendered)
		return nil
	}
	return writeAtomic(cfg.OutputDir, path, rendered)
}

func loadDocument(path string, lowercase, zeroCopy bool, rateLimit float64) (*value.Value, error) {
	var flags parser.Flags
	if lowercase {
		flags |= parser.KeyLowercase
	}
	if zeroCopy {
		flags |= parser.ZeroCopy
	}

	p := parser.New(flags)
	p.SetFileVars(path, true)
	p.SetIncludeFetcher(fetch.New(filepath.Dir(path), rateLimit).Fetch)

	if !p.AddFile(path, 0) {
		return nil, p.GetError()
	}
	doc := p.GetObject()
	if doc == nil {
		return nil, p.GetError()
	}
	return doc, nil
}

// writeAtomic renders output next to the input's basename inside dir,
// writing through a uuid-suffixed temp file and renaming into place so a
// reader never observes a partially written file.
func writeAtomic(dir, inputPath string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	base := filepath.Base(inputPath)
	final := filepath.Join(dir, base)
	tmp := filepath.Join(dir, base+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp output %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s to %s: %w", tmp, final, err)
	}
	return nil
}
