package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/jenian/envcheck/internal/config"
	"github.com/jenian/envcheck/internal/descriptor"
	"github.com/jenian/envcheck/internal/envfile"
	"github.com/jenian/envcheck/internal/languages"
	"github.com/jenian/envcheck/internal/metrics"
	"github.com/jenian/envcheck/internal/output"
	"github.com/jenian/envcheck/internal/parser"
	"github.com/jenian/envcheck/internal/scanner"
	"github.com/jenian/envcheck/internal/watcher"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a codebase for environment variable usages",
	Long: "Recursively scan a directory for environment variable reads and compare them with the\n" +
		"variables declared in a deployment descriptor, or with the live environment when there is none.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// scanOptions holds the scan flags
type scanOptions struct {
	path         string
	descriptor   string
	noDescriptor bool
	strict       bool
	verbose      bool
	jsonOutput   bool
	silent       bool
	skipUnused   bool
	envFiles     []string
	listing      string
	includeGlobs []string
	excludeGlobs []string
	workers      int
	metricsFile  string
	watch        bool
	debug        bool
	noHeader     bool
}

var scanOpts scanOptions

func init() {
	f := scanCmd.Flags()
	f.StringVarP(&scanOpts.path, "path", "p", ".", "Path to scan")
	f.StringVarP(&scanOpts.descriptor, "descriptor", "d", "", "Deployment descriptor (auto-detected in the working directory when empty)")
	f.BoolVar(&scanOpts.noDescriptor, "no-descriptor", false, "Compare against the live environment even if a descriptor exists")
	f.BoolVar(&scanOpts.strict, "strict", false, "Exit 1 when a variable without an in-code default is missing")
	f.BoolVarP(&scanOpts.verbose, "verbose", "v", false, "List every discovered variable with its file count")
	f.BoolVar(&scanOpts.jsonOutput, "json", false, "Output results in JSON format")
	f.BoolVar(&scanOpts.silent, "silent", false, "Silent mode (exit code only)")
	f.BoolVar(&scanOpts.skipUnused, "skip-unused", false, "Skip reporting unused variables")
	f.StringSliceVar(&scanOpts.envFiles, "env-file", []string{}, "Dotenv files merged into the live environment")
	f.StringVar(&scanOpts.listing, "listing", "", `Read "path::<TAB>line" records from a file ("-" for stdin) instead of walking the path`)
	f.StringSliceVar(&scanOpts.includeGlobs, "include", []string{}, "Glob patterns to include")
	f.StringSliceVar(&scanOpts.excludeGlobs, "exclude", []string{}, "Glob patterns to exclude")
	f.IntVar(&scanOpts.workers, "workers", parser.DefaultWorkers, "Number of files parsed in parallel")
	f.StringVar(&scanOpts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.BoolVar(&scanOpts.watch, "watch", false, "Re-run the scan when files change, until interrupted")
	f.BoolVar(&scanOpts.debug, "debug", false, "Enable debug logging")
	f.BoolVar(&scanOpts.noHeader, "no-header", false, "Skip printing the header")
}

// quiet reports whether progress output is suppressed
func (o scanOptions) quiet() bool {
	return o.silent || o.jsonOutput
}

func (o scanOptions) progress(format string, args ...any) {
	if !o.quiet() {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// audit is everything needed to run one scan, resolved once per invocation
type audit struct {
	opts       scanOptions
	root       string
	cfg        *config.Config
	parser     *parser.Parser
	recorder   *metrics.Recorder
	descriptor string // path as given or detected, empty in live environment mode
}

func runScan(cmd *cobra.Command, args []string) error {
	opts := scanOpts
	if len(args) > 0 {
		opts.path = args[0]
	}
	setupLogging(opts.debug)

	absPath, err := filepath.Abs(opts.path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", absPath)
	}

	// Print header unless disabled or in JSON/silent mode
	if !opts.noHeader && !opts.quiet() {
		printHeader()
	}

	cfg, err := config.LoadConfig(absPath)
	if err != nil {
		if !opts.silent {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", config.FileName, err)
		}
		// Continue with default config
		cfg = config.Default()
	}

	a := &audit{
		opts:   opts,
		root:   absPath,
		cfg:    cfg,
		parser: parser.NewParser(),
	}
	defer a.parser.Close()

	a.descriptor, err = resolveDescriptor(opts, cfg, absPath)
	if err != nil {
		return err
	}
	if opts.metricsFile != "" {
		a.recorder = metrics.NewRecorder()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := a.run(ctx)
	if err != nil {
		return err
	}

	if opts.watch {
		return a.watch(ctx)
	}

	if code := output.ExitCode(result, opts.strict); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// resolveDescriptor picks the descriptor: the flag, then the config file, then
// the conventional names in the working directory and the scan root
func resolveDescriptor(opts scanOptions, cfg *config.Config, root string) (string, error) {
	if opts.noDescriptor {
		return "", nil
	}
	if opts.descriptor != "" {
		if _, err := os.Stat(opts.descriptor); err != nil {
			return "", fmt.Errorf("descriptor not found: %w", err)
		}
		return opts.descriptor, nil
	}
	if cfg.Descriptor.Path != "" {
		path := cfg.Descriptor.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("descriptor from %s not found: %w", config.FileName, err)
		}
		return path, nil
	}

	dirs := []string{"."}
	if wd, err := os.Getwd(); err != nil || filepath.Clean(wd) != root {
		dirs = append(dirs, root)
	}
	for _, dir := range dirs {
		if path, ok := descriptor.Detect(dir, descriptor.DefaultCandidates); ok {
			slog.Debug("descriptor detected", "path", path)
			return path, nil
		}
	}
	return "", nil
}

// run performs one full audit and renders the report
func (a *audit) run(ctx context.Context) (analyzer.ScanResult, error) {
	start := time.Now()

	var declared map[string]bool
	if a.descriptor != "" {
		doc, err := descriptor.Load(a.descriptor)
		if err != nil {
			return analyzer.ScanResult{}, fmt.Errorf("failed to load descriptor %s: %w", a.descriptor, err)
		}
		declared = descriptor.Collect(doc, a.cfg.Descriptor.Sections...)
		a.opts.progress("Using descriptor %s (%d declared variables)\n", a.descriptor, len(declared))
	}

	index, err := a.index(ctx)
	if err != nil {
		return analyzer.ScanResult{}, err
	}

	available := declared
	if declared == nil {
		loader := envfile.NewLoader()
		loader.SetEnvFiles(a.opts.envFiles)
		available, err = loader.Available(a.root, os.Environ())
		if err != nil {
			return analyzer.ScanResult{}, fmt.Errorf("failed to load env files: %w", err)
		}
	}

	result := analyzer.Reconcile(index, available, declared, a.cfg)

	if err := output.Format(os.Stdout, result, output.Options{
		JSON:       a.opts.jsonOutput,
		Silent:     a.opts.silent,
		Verbose:    a.opts.verbose,
		SkipUnused: a.opts.skipUnused,
		Descriptor: a.descriptor,
	}); err != nil {
		return analyzer.ScanResult{}, fmt.Errorf("failed to format output: %w", err)
	}

	if a.recorder != nil {
		a.recorder.Observe(result, time.Since(start))
		if err := a.recorder.WriteTextfile(a.opts.metricsFile); err != nil {
			return analyzer.ScanResult{}, err
		}
	}
	return result, nil
}

// index builds the usage index from the listing or by walking the root
func (a *audit) index(ctx context.Context) (analyzer.UsageIndex, error) {
	if a.opts.listing != "" {
		lines, err := readListing(a.opts.listing)
		if err != nil {
			return nil, err
		}
		a.opts.progress("Read %d listing records\n", len(lines))
		return analyzer.Aggregate(lines), nil
	}

	fileScanner := scanner.NewScanner()
	if len(a.opts.includeGlobs) > 0 {
		if err := fileScanner.SetIncludeGlobs(a.opts.includeGlobs); err != nil {
			return nil, err
		}
	}
	if len(a.opts.excludeGlobs) > 0 {
		if err := fileScanner.SetExcludeGlobs(a.opts.excludeGlobs); err != nil {
			return nil, err
		}
	}
	if len(a.cfg.Ignores.Folders) > 0 {
		fileScanner.AddExcludeDirs(a.cfg.Ignores.Folders)
	}

	a.opts.progress("Scanning %s...\n", a.root)
	files, err := fileScanner.Scan(a.root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}
	a.opts.progress("%s\n", reportFileCounts(files))

	return a.parser.ParseFiles(ctx, files, a.root, a.opts.workers)
}

func readListing(path string) ([]analyzer.Line, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open listing: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parser.ReadListing(r)
}

// watch re-runs the audit whenever a source file, the descriptor or the
// configuration changes
func (a *audit) watch(ctx context.Context) error {
	skip := append([]string{".git", "node_modules", "vendor", "dist", "build"}, a.cfg.Ignores.Folders...)
	descriptorBase := filepath.Base(a.descriptor)

	w, err := watcher.New(watcher.DefaultDebounce, skip, func(path string) bool {
		base := filepath.Base(path)
		if base == config.FileName || (a.descriptor != "" && base == descriptorBase) || strings.HasPrefix(base, ".env") {
			return true
		}
		return languages.Detect(path) != languages.LanguageUnknown
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(a.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.root, err)
	}
	a.opts.progress("\nWatching %s for changes (Ctrl+C to stop)...\n", a.root)

	return w.Run(ctx, func(paths []string) {
		a.opts.progress("\n%d file(s) changed, re-scanning...\n", len(paths))
		slog.Debug("changed files", "paths", paths)

		if cfg, err := config.LoadConfig(a.root); err == nil {
			a.cfg = cfg
		} else {
			slog.Warn("keeping previous configuration", "error", err)
		}
		if _, err := a.run(ctx); err != nil {
			fmt.Fprint(os.Stderr, output.FormatError(err))
		}
	})
}

// reportFileCounts generates a formatted report string of file counts by language
func reportFileCounts(files []scanner.FileInfo) string {
	langCounts := make(map[languages.Language]int)
	for _, file := range files {
		langCounts[file.Language]++
	}

	shortNames := map[languages.Language]string{
		languages.LanguageJavaScript: "js",
		languages.LanguageTypeScript: "ts",
		languages.LanguageTSX:        "tsx",
	}

	var reportParts []string
	langOrder := []languages.Language{
		languages.LanguageJavaScript,
		languages.LanguageTypeScript,
		languages.LanguageTSX,
		languages.LanguageGo,
		languages.LanguagePython,
		languages.LanguageRust,
		languages.LanguageJava,
	}
	for _, lang := range langOrder {
		if count := langCounts[lang]; count > 0 {
			name := string(lang)
			if short, ok := shortNames[lang]; ok {
				name = short
			}
			reportParts = append(reportParts, fmt.Sprintf("%s: %d", name, count))
			delete(langCounts, lang)
		}
	}
	// Add any remaining languages
	var rest []string
	for lang, count := range langCounts {
		if count > 0 {
			rest = append(rest, fmt.Sprintf("%s: %d", lang, count))
		}
	}
	sort.Strings(rest)
	reportParts = append(reportParts, rest...)

	if len(reportParts) > 0 {
		return fmt.Sprintf("Found %d files (%s)", len(files), strings.Join(reportParts, ", "))
	}
	return fmt.Sprintf("Found %d files to parse", len(files))
}
