package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"jsbi2bigint/pkg/config"
	"jsbi2bigint/pkg/driver"
	"jsbi2bigint/pkg/errors"
	"jsbi2bigint/pkg/source"
)

// Exit codes
const (
	exitOK       = 0
	exitFailed   = 1  // at least one unit could not be rewritten
	exitUsage    = 64 // command line usage error
	exitInternal = 70 // internal software or I/O error
)

const usage = `Usage: jsbi2bigint [flags] [file|dir ...]

Rewrites uses of the JSBI polyfill into native BigInt syntax. With no arguments the
program reads standard input and writes standard output.

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	write      bool
	output     string
	workers    int
	strict     bool
	list       bool
	verbose    bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("jsbi2bigint", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	var opts options
	flags.StringVar(&opts.configPath, "config", "", "Configuration file (default: nearest jsbi2bigint.yaml)")
	flags.BoolVar(&opts.write, "w", false, "Write results back to the source files")
	flags.StringVar(&opts.output, "o", "", "Output file (single input only)")
	flags.IntVar(&opts.workers, "j", 0, "Number of files processed in parallel (default: configuration or one per CPU)")
	flags.BoolVar(&opts.strict, "strict", false, "Report identifiers left referring to removed JSBI bindings")
	flags.BoolVar(&opts.list, "l", false, "List files that would be rewritten instead of printing them")
	flags.BoolVar(&opts.verbose, "v", false, "Report progress on standard error")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	inputs := flags.Args()

	if msg := validate(opts, inputs); msg != "" {
		fmt.Fprintf(stderr, "jsbi2bigint: %s\n", msg)
		flags.Usage()
		return exitUsage
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
		return exitInternal
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "j":
			cfg.Workers = opts.workers
		case "strict":
			cfg.Strict = opts.strict
		}
	})

	color := false
	if f, ok := stderr.(*os.File); ok {
		color = errors.ShouldColor(f)
	}

	if len(inputs) == 0 {
		return runStdin(stdin, stdout, stderr, cfg, opts, color)
	}
	return runFiles(ctx, inputs, stdout, stderr, cfg, opts, color)
}

// validate returns a usage error message, or "" when the flag combination is valid.
func validate(opts options, inputs []string) string {
	switch {
	case opts.workers < 0:
		return "-j must not be negative"
	case opts.write && opts.output != "":
		return "-w and -o cannot be combined"
	case opts.write && len(inputs) == 0:
		return "-w requires file arguments"
	case opts.list && len(inputs) == 0:
		return "-l requires file arguments"
	case opts.output != "" && len(inputs) > 1:
		return "-o accepts a single input"
	}
	return ""
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.Default(), nil
		}
		path = found
	}
	return config.Load(path)
}

func runStdin(stdin io.Reader, stdout, stderr io.Writer, cfg *config.Config, opts options, color bool) int {
	data, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "jsbi2bigint: reading standard input: %v\n", err)
		return exitInternal
	}

	res := driver.Rewrite(source.NewStdinSource(string(data)), cfg)
	if res.Failed() {
		errors.DisplayErrors(stderr, res.Diagnostics, color)
		return exitFailed
	}

	if opts.output != "" {
		if err := driver.WriteResult(res, opts.output); err != nil {
			fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
			return exitInternal
		}
		return exitOK
	}
	io.WriteString(stdout, res.Output)
	return exitOK
}

func runFiles(ctx context.Context, inputs []string, stdout, stderr io.Writer, cfg *config.Config, opts options, color bool) int {
	paths, err := driver.CollectFiles(inputs, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
		return exitInternal
	}
	if opts.output != "" && len(paths) != 1 {
		fmt.Fprintf(stderr, "jsbi2bigint: -o accepts a single input, %d files found\n", len(paths))
		return exitUsage
	}

	results, err := driver.RewriteFiles(ctx, paths, cfg)
	code := exitOK
	if err != nil {
		fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
		code = exitInternal
	}

	var rewritten, failed int
	for _, res := range results {
		if res == nil {
			continue
		}
		switch {
		case res.Err != nil:
			fmt.Fprintf(stderr, "jsbi2bigint: %v\n", res.Err)
			code = exitInternal
			failed++
			continue
		case len(res.Diagnostics) > 0:
			errors.DisplayErrors(stderr, res.Diagnostics, color)
			if code == exitOK {
				code = exitFailed
			}
			failed++
			continue
		}
		if res.Changed {
			rewritten++
		}

		switch {
		case opts.list:
			if res.Changed {
				fmt.Fprintln(stdout, res.Path)
			}
		case opts.write:
			if !res.Changed {
				continue
			}
			if err := driver.WriteResult(res, res.Path); err != nil {
				fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
				code = exitInternal
				continue
			}
			if opts.verbose {
				fmt.Fprintf(stderr, "rewrote %s\n", res.Path)
			}
		case opts.output != "":
			if err := driver.WriteResult(res, opts.output); err != nil {
				fmt.Fprintf(stderr, "jsbi2bigint: %v\n", err)
				code = exitInternal
			}
		default:
			io.WriteString(stdout, res.Output)
		}
	}

	if opts.verbose {
		fmt.Fprintf(stderr, "jsbi2bigint: %d files, %d rewritten, %d failed\n", len(paths), rewritten, failed)
	}
	return code
}
