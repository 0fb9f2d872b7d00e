package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/treecp/internal/config"
	"github.com/bamsammich/treecp/internal/engine"
	"github.com/bamsammich/treecp/internal/event"
	"github.com/bamsammich/treecp/internal/filter"
	"github.com/bamsammich/treecp/internal/stats"
	"github.com/bamsammich/treecp/internal/ui"
	"github.com/bamsammich/treecp/internal/walk"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// flags holds the parsed command line.
type flags struct {
	errorsFile         string
	filterFile         string
	regex              string
	minSize            string
	maxSize            string
	bwLimit            string
	hash               string
	logFile            string
	configFile         string
	limit              int
	overwrite          bool
	preserveTimestamps bool
	continueOnError    bool
	dereference        bool
	verify             bool
	sequential         bool
	jsonOut            bool
	quiet              bool
	verbose            bool
	showVersion        bool
}

//nolint:gocyclo,revive // main CLI entry point orchestrates all flag parsing
func run() int {
	var f flags
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "treecp [flags] <source> <destination>",
		Short: "Copy a file or directory tree with bounded concurrency",
		Args: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				fmt.Fprintf(os.Stdout, "treecp %s\n", version)
				return nil
			}
			return copyTree(cmd, &f, chain, args[0], args[1])
		},
	}

	fl := rootCmd.Flags()
	fl.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fl.IntVarP(&f.limit, "limit", "n", engine.DefaultLimit, "maximum number of entries copied at once")
	fl.BoolVarP(&f.overwrite, "overwrite", "f", false, "replace existing destination files and links")
	fl.BoolVarP(&f.preserveTimestamps, "preserve-timestamps", "p", false,
		"preserve access and modification times")
	fl.BoolVar(&f.continueOnError, "continue-on-error", false, "record failures and keep copying")
	fl.StringVar(&f.errorsFile, "errors", "", "write per-entry errors with stack traces to FILE")
	fl.BoolVarP(&f.dereference, "dereference", "L", false, "copy what symbolic links point to")

	// Filter flags use a custom pflag.Value to preserve CLI ordering.
	fl.Var(&filterFlag{chain: chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	fl.Var(&filterFlag{chain: chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	fl.StringVar(&f.filterFile, "filter", "", "read filter rules from FILE")
	fl.StringVar(&f.regex, "regex", "", "copy only paths matching the regular expression")
	fl.StringVar(&f.minSize, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	fl.StringVar(&f.maxSize, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")

	fl.StringVar(&f.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	fl.BoolVar(&f.verify, "verify", false, "verify checksums after copy")
	fl.StringVar(&f.hash, "hash", string(engine.BLAKE3), "checksum algorithm for --verify (blake3 or xxhash)")
	fl.BoolVar(&f.sequential, "sync", false, "copy sequentially on a single goroutine")
	fl.BoolVar(&f.jsonOut, "json", false, "print the final statistics as JSON")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress all output except errors")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "print one line per entry")
	fl.StringVar(&f.logFile, "log", "", "write structured JSON log to FILE")
	fl.StringVar(&f.configFile, "config", "", "read defaults from FILE instead of the user config")

	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func copyTree(cmd *cobra.Command, f *flags, chain *filter.Chain, src, dst string) error {
	cfg, err := loadConfig(f.configFile)
	if err != nil {
		if f.configFile != "" {
			return err
		}
		slog.Warn("failed to load config", "error", err)
	}
	applyConfigDefaults(cmd.Flags(), cfg.Defaults, f)

	closeLog, err := setupLogging(f)
	if err != nil {
		return err
	}
	defer closeLog()

	engineCfg := engine.Config{
		Src:                src,
		Dst:                dst,
		Limit:              f.limit,
		Overwrite:          f.overwrite,
		PreserveTimestamps: f.preserveTimestamps,
		ContinueOnError:    f.continueOnError,
		Dereference:        f.dereference,
		Verify:             f.verify,
		Logger:             slog.Default(),
	}

	if engineCfg.HashAlgo, err = engine.ParseHashAlgo(f.hash); err != nil {
		return err
	}
	if f.bwLimit != "" {
		if engineCfg.BWLimit, err = filter.ParseSize(f.bwLimit); err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}
	if engineCfg.Filter, err = buildFilter(f, chain, src); err != nil {
		return err
	}

	if f.errorsFile != "" {
		ef, err := os.Create(f.errorsFile)
		if err != nil {
			return fmt.Errorf("open error log: %w", err)
		}
		defer ef.Close()
		engineCfg.Errors = engine.NewErrorWriter(ef)
	}

	theme, err := ui.NewTheme(deref(cfg.Theme.Success), deref(cfg.Theme.Failure))
	if err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	theme.SetEnabled(ui.IsTTY(os.Stderr.Fd()))

	collector := stats.NewCollector()
	engineCfg.Stats = collector
	events := make(chan event.Event, 256)
	engineCfg.Events = events

	presenter := ui.NewPresenter(ui.Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Stats:     collector,
		Theme:     theme,
		SrcRoot:   src,
		Interval:  progressInterval(f),
		Quiet:     f.quiet || f.jsonOut,
		Verbose:   f.verbose,
	})

	presenterEvents := (<-chan event.Event)(events)
	if f.logFile != "" {
		presenterEvents = teeEvents(events)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Debug("starting copy", "src", src, "dst", dst, "limit", f.limit, "sync", f.sequential)

	var presenterErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	var result engine.Result
	if f.sequential {
		result = engine.RunSync(engineCfg)
	} else {
		result = engine.Run(ctx, engineCfg)
	}
	stop()
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}

	if ew, ok := engineCfg.Errors.(*engine.ErrorWriter); ok {
		if err := ew.WriteErr(); err != nil {
			slog.Warn("error log incomplete", "file", f.errorsFile, "error", err)
		}
	}

	if f.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Stats); err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
	} else if !f.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}

	if result.Err != nil {
		slog.Error("copy failed", "op", result.ID, "code", engine.Code(result.Err), "error", result.Err)
		return &exitError{code: exitCode(result.Stats)}
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// setupLogging installs the default slog logger. With --log, records are
// also written as JSON to the log file. The returned func closes it.
func setupLogging(f *flags) (func(), error) {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	} else if !f.quiet {
		level = slog.LevelInfo
	}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	closeFn := func() {}
	if f.logFile != "" {
		lf, err := os.Create(f.logFile)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		handler = ui.NewMultiHandler(handler, jsonHandler)
		closeFn = func() { lf.Close() }
	}
	slog.SetDefault(slog.New(handler))
	return closeFn, nil
}

// teeEvents logs every event before forwarding it to the presenter.
func teeEvents(events <-chan event.Event) <-chan event.Event {
	teed := make(chan event.Event, 256)
	go func() {
		defer close(teed)
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("path", ev.Path),
				slog.String("target", ev.Target),
				slog.Int64("size", ev.Size),
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "treecp.event", attrs...)
			teed <- ev
		}
	}()
	return teed
}

// buildFilter combines the ordered pattern chain, the filter file, the size
// bounds and the regex into one walk.Filter. Nil means copy everything.
func buildFilter(f *flags, chain *filter.Chain, src string) (walk.Filter, error) {
	if f.filterFile != "" {
		if err := chain.LoadFile(f.filterFile); err != nil {
			return nil, fmt.Errorf("load filter file: %w", err)
		}
	}
	if f.minSize != "" {
		n, err := filter.ParseSize(f.minSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --min-size: %w", err)
		}
		chain.SetMinSize(n)
	}
	if f.maxSize != "" {
		n, err := filter.ParseSize(f.maxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-size: %w", err)
		}
		chain.SetMaxSize(n)
	}

	var filters []walk.Filter
	if !chain.Empty() {
		filters = append(filters, chain.Predicate(src))
	}
	if f.regex != "" {
		re, err := filter.CompileRegexp(f.regex)
		if err != nil {
			return nil, err
		}
		filters = append(filters, re.Predicate())
	}
	return allOf(filters...), nil
}

// allOf includes an entry only when every filter does.
func allOf(filters ...walk.Filter) walk.Filter {
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	}
	return func(e walk.Entry) bool {
		for _, fn := range filters {
			if !fn(e) {
				return false
			}
		}
		return true
	}
}

func progressInterval(f *flags) time.Duration {
	if f.verbose || ui.IsTTY(os.Stderr.Fd()) {
		return 0
	}
	return 5 * time.Second
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(fs *pflag.FlagSet, defaults config.DefaultsConfig, f *flags) {
	setInt(fs, "limit", defaults.Limit, &f.limit)
	setBool(fs, "overwrite", defaults.Overwrite, &f.overwrite)
	setBool(fs, "preserve-timestamps", defaults.PreserveTimestamps, &f.preserveTimestamps)
	setBool(fs, "continue-on-error", defaults.ContinueOnError, &f.continueOnError)
	setBool(fs, "dereference", defaults.Dereference, &f.dereference)
	setBool(fs, "verify", defaults.Verify, &f.verify)
	setString(fs, "hash", defaults.Hash, &f.hash)
	setString(fs, "bwlimit", defaults.BWLimit, &f.bwLimit)
}

func setInt(fs *pflag.FlagSet, name string, v *int, dst *int) {
	if v != nil && !fs.Changed(name) {
		*dst = *v
	}
}

func setBool(fs *pflag.FlagSet, name string, v *bool, dst *bool) {
	if v != nil && !fs.Changed(name) {
		*dst = *v
	}
}

func setString(fs *pflag.FlagSet, name string, v *string, dst *string) {
	if v != nil && !fs.Changed(name) {
		*dst = *v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// exitCode is 1 when some entries were copied before the failure and 2
// when nothing was.
func exitCode(snap stats.Snapshot) int {
	c := snap.Copied
	if c.Files+c.Directories+c.Links > 0 {
		return 1
	}
	return 2
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
