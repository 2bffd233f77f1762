// Package cli implements the prtr command-line interface: flag parsing
// via cobra, structured logging via zap, directory
// traversal over a bounded worker pool, and the exit-code contract
// (0 = formatted/already-formatted, 1 = check found unformatted files,
// 2 = a file failed to parse or violated a document-consistency
// invariant).
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rdfprtr/prtr/canon"
	"github.com/rdfprtr/prtr/format"
	"github.com/rdfprtr/prtr/parse"
	"github.com/rdfprtr/prtr/rdf"
)

// exitError carries the process exit code a failure should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode returns the process exit code err implies: 2 for a nil-safe
// default (an unexpected internal error), or the code an *exitError
// carries.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 2
}

type options struct {
	write                bool
	check                bool
	force                bool
	canonicalize         bool
	indentation          int
	labelAllBlankNodes   bool
	noPrtrSorting        bool
	noSPARQLSyntax       bool
	singleLeafedNewlines bool
	predOrderPreset      string
	subjTypeOrderPreset  string
	ntriples             bool
	workers              int
	quiet                bool
	verbose              bool
}

// Execute builds and runs the root command against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "prtr [flags] FILE...",
		Short:         "Format and canonicalize Turtle documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.write, "write", "w", false, "write formatted output back to each file")
	flags.BoolVarP(&opts.check, "check", "c", false, "exit 1 if any file is not already formatted, without writing")
	flags.BoolVarP(&opts.force, "force", "f", false, "overwrite the output file even when it is already equal to the formatted result")
	flags.BoolVar(&opts.canonicalize, "canonicalize", false, "relabel blank nodes to their canonical form before formatting")
	flags.IntVarP(&opts.indentation, "indentation", "i", 2, "spaces per indent level")
	flags.BoolVarP(&opts.labelAllBlankNodes, "label-all-blank-nodes", "l", false, "render every blank node as a labelled top-level subject")
	flags.BoolVar(&opts.noPrtrSorting, "no-prtr-sorting", false, "ignore prtr:sortingId when ordering labelled blank node siblings")
	flags.BoolVar(&opts.noSPARQLSyntax, "no-sparql-syntax", false, "use @prefix/@base instead of PREFIX/BASE in the prologue")
	flags.BoolVarP(&opts.singleLeafedNewlines, "single-leafed-new-lines", "n", false, "maximal newline policy: every predicate, object and nested \"[\" on its own line")
	flags.StringVar(&opts.predOrderPreset, "pred-order-preset", "", "order preset (rdf, owl, skos, shacl, shex); sets both the predicate and the subject type order")
	flags.StringVar(&opts.subjTypeOrderPreset, "subj-type-order-preset", "", "order preset (rdf, owl, skos, shacl, shex); sets both the predicate and the subject type order")
	flags.BoolVar(&opts.ntriples, "ntriples", false, "parse input as N-Triples instead of Turtle")
	flags.IntVar(&opts.workers, "workers", 4, "number of files to process concurrently")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress informational logging")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newLogger(opts options) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	switch {
	case opts.quiet:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case opts.verbose:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(cmd *cobra.Command, args []string, opts options) error {
	if opts.predOrderPreset != "" && opts.subjTypeOrderPreset != "" && opts.predOrderPreset != opts.subjTypeOrderPreset {
		return &exitError{code: 2, err: fmt.Errorf("prtr: --pred-order-preset and --subj-type-order-preset must match when both are set")}
	}
	if opts.indentation < 0 {
		return &exitError{code: 2, err: fmt.Errorf("prtr: invalid indentation value %d: must not be negative", opts.indentation)}
	}
	preset := opts.predOrderPreset
	if preset == "" {
		preset = opts.subjTypeOrderPreset
	}

	logger := newLogger(opts)
	defer logger.Sync() //nolint:errcheck

	files, err := expandPaths(args)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	cfg := format.Config{
		Indent:               strings.Repeat(" ", opts.indentation),
		LabelAllBlankNodes:   opts.labelAllBlankNodes,
		NoPrtrSorting:        opts.noPrtrSorting,
		NoSPARQLSyntax:       opts.noSPARQLSyntax,
		SingleLeafedNewlines: opts.singleLeafedNewlines,
		Preset:               preset,
	}

	results := make([]fileResult, len(files))
	sem := make(chan struct{}, max(1, opts.workers))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = processFile(f, opts, cfg, logger)
		}(i, f)
	}
	wg.Wait()

	var unformatted, failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			logger.Error("failed", zap.String("file", r.path), zap.Error(r.err))
			continue
		}
		if opts.check && !r.ok {
			unformatted++
			fmt.Fprintln(cmd.OutOrStdout(), r.diff)
		}
	}

	switch {
	case failed > 0:
		return &exitError{code: 2, err: fmt.Errorf("prtr: %d file(s) failed", failed)}
	case opts.check && unformatted > 0:
		return &exitError{code: 1, err: fmt.Errorf("prtr: %d file(s) not formatted", unformatted)}
	default:
		return nil
	}
}

type fileResult struct {
	path string
	ok   bool
	diff string
	err  error
}

func processFile(path string, opts options, cfg format.Config, logger *zap.Logger) fileResult {
	logger.Debug("processing", zap.String("file", path))

	raw, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: err}
	}

	var doc *rdf.Document
	if opts.ntriples || strings.HasSuffix(path, ".nt") {
		doc, err = parse.NTriples(bytes.NewReader(raw))
	} else {
		doc, err = parse.Turtle(bytes.NewReader(raw))
	}
	if err != nil {
		return fileResult{path: path, err: err}
	}

	if opts.canonicalize {
		doc, err = canon.Canonicalize(doc)
		if err != nil {
			return fileResult{path: path, err: err}
		}
	}

	if opts.check {
		diffText, ok, err := format.Check(doc, cfg, raw)
		if err != nil {
			return fileResult{path: path, err: err}
		}
		return fileResult{path: path, ok: ok, diff: diffText}
	}

	out, err := format.Format(doc, cfg)
	if err != nil {
		return fileResult{path: path, err: err}
	}
	if opts.write {
		if !opts.force && string(raw) == out {
			logger.Debug("already formatted, skipping write", zap.String("file", path))
			return fileResult{path: path, ok: true}
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fileResult{path: path, err: err}
		}
		logger.Info("formatted", zap.String("file", path))
	} else {
		fmt.Print(out)
	}
	return fileResult{path: path, ok: true}
}

// expandPaths walks any directory argument recursively for .ttl/.nt files
// and passes plain file arguments through unchanged.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		err = filepath.WalkDir(a, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if strings.HasSuffix(p, ".ttl") || strings.HasSuffix(p, ".nt") {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
