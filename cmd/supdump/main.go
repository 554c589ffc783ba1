// Command supdump decodes PGS subtitle streams (.sup files) and prints their
// segments, display sets, or summary statistics.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/pgs/internal/config"
)

var version = "dev"

// cliFlags holds the command-line flags that can override the config.
type cliFlags struct {
	config  string
	format  string
	workers int
	sets    bool
	summary bool
	quiet   bool
	version bool
}

func newFlagSet() (*flag.FlagSet, *cliFlags) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("supdump", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", "", "YAML config file")
	fs.StringVar(&f.format, "format", "", "Output format: text or json")
	fs.IntVar(&f.workers, "workers", 0, "Files decoded concurrently")
	fs.BoolVar(&f.sets, "sets", false, "Print assembled display sets instead of packets")
	fs.BoolVar(&f.summary, "summary", false, "Print per-file statistics")
	fs.BoolVar(&f.quiet, "quiet", false, "Suppress per-packet output")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")
	return fs, f
}

// apply copies every flag that was set on the command line over cfg.
func (f *cliFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "format":
			cfg.Format = f.format
		case "workers":
			cfg.Workers = f.workers
		case "sets":
			cfg.DisplaySets = f.sets
		case "summary":
			cfg.Summary = f.summary
		case "quiet":
			cfg.Quiet = f.quiet
		}
	})
}

func main() {
	fs, flags := newFlagSet()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if flags.version {
		fmt.Println("supdump", version)
		return
	}

	cfg, err := config.Load(flags.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flags.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: supdump [flags] file.sup...")
		fs.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if failed := run(ctx, cfg, fs.Args(), os.Stdout, slog.Default()); failed > 0 {
		slog.Error("decoding failed", "files", failed)
		os.Exit(1)
	}
}

// run decodes every path with at most cfg.Workers files in flight and
// writes each file's output to w in argument order. It returns the number
// of files that failed.
func run(ctx context.Context, cfg *config.Config, paths []string, w io.Writer, log *slog.Logger) int {
	outputs := make([]bytes.Buffer, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			d := &dumper{cfg: cfg, name: path, w: &outputs[i], log: log.With("file", path)}
			errs[i] = d.dumpFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait() // failures are recorded in errs

	failed := 0
	for i, path := range paths {
		if _, err := outputs[i].WriteTo(w); err != nil {
			log.Error("write output", "error", err)
		}
		if errs[i] != nil {
			log.Error("decode failed", "file", path, "error", errs[i])
			failed++
		}
	}
	return failed
}
