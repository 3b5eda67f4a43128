package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/lambdalift/interp"
	"github.com/wippyai/lambdalift/ir"
	"github.com/wippyai/lambdalift/lift"
	"github.com/wippyai/lambdalift/syntax"
	"github.com/wippyai/lambdalift/wasmgen"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#98FB98"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

type options struct {
	in        string
	dump      bool
	entry     string
	args      string
	backend   string
	check     bool
	maxSweeps int
}

func main() {
	var (
		opts        options
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.StringVar(&opts.in, "in", "", "Source file (- for stdin)")
	flag.BoolVar(&opts.dump, "dump", true, "Print the lifted program")
	flag.StringVar(&opts.entry, "run", "", "Function to run after lifting (func or module.func)")
	flag.StringVar(&opts.args, "args", "", "Integer arguments (comma-separated)")
	flag.StringVar(&opts.backend, "backend", "interp", "Backend for -run: interp or wasm")
	flag.BoolVar(&opts.check, "check", false, "Also run the program before lifting and compare")
	flag.IntVar(&opts.maxSweeps, "max-sweeps", 0, "Limit on fixpoint sweeps (0 for the default)")
	flag.Parse()

	if opts.in == "" {
		fmt.Fprintln(os.Stderr, "Usage: lift -in <file> [-dump=false] [-run func] [-args 1,2] [-backend interp|wasm] [-check]")
		fmt.Fprintln(os.Stderr, "       lift -in <file> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	lift.SetLogger(log)
	wasmgen.SetLogger(log)

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, render(failStyle, "Error: "+err.Error()))
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// render applies style only when stderr is a terminal.
func render(style lipgloss.Style, s string) string {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return s
	}
	return style.Render(s)
}

func readSource(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func parseArgs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// outcome is what a run produced, whichever backend ran it.
type outcome struct {
	output []int64
	value  int64
}

func execute(ctx context.Context, prog *ir.Program, backend, entry string, args []int64, out io.Writer) (*outcome, error) {
	switch backend {
	case "interp":
		res, err := interp.Run(ctx, prog, entry, args, interp.WithOutput(out))
		if err != nil {
			return nil, err
		}
		return &outcome{output: res.Output, value: res.Value}, nil
	case "wasm":
		fn, err := interp.Lookup(prog, entry)
		if err != nil {
			return nil, err
		}
		res, err := wasmgen.RunModule(ctx, fn.Module(), fn.Name, args, wasmgen.WithOutput(out))
		if err != nil {
			return nil, err
		}
		return &outcome{output: res.Output, value: res.Value}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	src, err := readSource(opts.in)
	if err != nil {
		return err
	}
	args, err := parseArgs(opts.args)
	if err != nil {
		return err
	}
	prog, err := syntax.Parse(opts.in, src)
	if err != nil {
		return err
	}

	var before *outcome
	if opts.check && opts.entry != "" {
		// The original program may contain nested functions, which only
		// the interpreter runs.
		before, err = execute(ctx, prog, "interp", opts.entry, args, io.Discard)
		if err != nil {
			return fmt.Errorf("run before lifting: %w", err)
		}
	}

	var liftOpts []lift.Option
	if opts.maxSweeps > 0 {
		liftOpts = append(liftOpts, lift.WithMaxSweeps(opts.maxSweeps))
	}
	res, err := lift.Run(prog, liftOpts...)
	if err != nil {
		return err
	}
	printStats(stderr, res.Stats)
	fmt.Fprintf(stderr, "%s %s\n", render(labelStyle, fmt.Sprintf("%-16s", "fingerprint:")),
		render(valueStyle, fmt.Sprintf("%016x", syntax.Fingerprint(prog))))

	if opts.dump {
		if err := syntax.Print(stdout, prog); err != nil {
			return err
		}
	}
	if opts.entry == "" {
		return nil
	}

	after, err := execute(ctx, prog, opts.backend, opts.entry, args, stdout)
	if err != nil {
		return fmt.Errorf("run %s: %w", opts.entry, err)
	}
	if fn, _ := interp.Lookup(prog, opts.entry); fn != nil && fn.Result != ir.TypeVoid {
		fmt.Fprintf(stderr, "%s %s\n", render(labelStyle, "result:"), render(valueStyle, strconv.FormatInt(after.value, 10)))
	}

	if before != nil {
		if before.value != after.value || !slices.Equal(before.output, after.output) {
			return fmt.Errorf("behavior changed: before %v -> %d, after %v -> %d",
				before.output, before.value, after.output, after.value)
		}
		fmt.Fprintln(stderr, render(valueStyle, "check: behavior preserved"))
	}
	return nil
}

func printStats(w io.Writer, s lift.Stats) {
	rows := []struct {
		label string
		value int
	}{
		{"nested", s.Nested},
		{"sweeps", s.Sweeps},
		{"hoisted", s.Hoisted},
		{"formals added", s.FormalsAdded},
		{"calls rewritten", s.CallsRewritten},
		{"arguments added", s.ArgsAdded},
		{"backpatches", s.Backpatches},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", render(labelStyle, fmt.Sprintf("%-16s", r.label+":")), render(valueStyle, strconv.Itoa(r.value)))
	}
}
