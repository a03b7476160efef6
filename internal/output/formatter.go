package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/jenian/envcheck/internal/config"
	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Options controls how a ScanResult is rendered
type Options struct {
	JSON       bool
	Silent     bool
	Verbose    bool // List every discovered variable with its file count
	SkipUnused bool
	Descriptor string // Descriptor the result was reconciled against, empty for the live environment
}

// colorSupported reports whether w is a terminal that accepts ANSI sequences
func colorSupported(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	// On Windows, enable ANSI escape sequences (handled in formatter_windows.go)
	return enableANSI(f)
}

// printer writes to w, coloring only when supported
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) c(code string) string {
	if p.color {
		return code
	}
	return ""
}

func (p printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// JSONOutput represents the JSON output format
type JSONOutput struct {
	Descriptor     string       `json:"descriptor"`
	Missing        []MissingVar `json:"missing"`
	Unused         []string     `json:"unused"`
	IgnoredMissing int          `json:"ignored_missing"`
	IgnoredUnused  int          `json:"ignored_unused"`
	Variables      []Variable   `json:"variables,omitempty"`
}

// MissingVar represents a missing environment variable with its locations
type MissingVar struct {
	Key            string    `json:"key"`
	FullyDefaulted bool      `json:"fully_defaulted"`
	Files          []FileRef `json:"files"`
}

// FileRef is one file reading a variable
type FileRef struct {
	Path       string `json:"path"`
	Lines      []int  `json:"lines"`
	HasDefault bool   `json:"has_default"`
}

// Variable is a discovered variable with the number of files reading it
type Variable struct {
	Key   string `json:"key"`
	Files int    `json:"files"`
}

// Format writes the scan results to w according to opts
func Format(w io.Writer, result analyzer.ScanResult, opts Options) error {
	if opts.Silent {
		// In silent mode, only return exit code (handled by caller)
		return nil
	}

	if opts.JSON {
		return formatJSON(w, result, opts)
	}

	return formatHumanReadable(printer{w: w, color: colorSupported(w)}, result, opts)
}

func fileRefs(result analyzer.ScanResult, key string) []FileRef {
	files := result.Missing[key]
	refs := make([]FileRef, 0, len(files))
	for _, file := range files {
		lines := []int{}
		if rec, ok := result.Index[file]; ok {
			lines = append(lines, rec.Lines[key]...)
		}
		refs = append(refs, FileRef{
			Path:       file,
			Lines:      lines,
			HasDefault: result.HasDefault(file, key),
		})
	}
	return refs
}

func variables(result analyzer.ScanResult) []Variable {
	names := result.Variables()
	vars := make([]Variable, 0, len(names))
	for _, name := range names {
		vars = append(vars, Variable{Key: name, Files: len(result.Needed[name])})
	}
	return vars
}

// formatJSON outputs results in JSON format
func formatJSON(w io.Writer, result analyzer.ScanResult, opts Options) error {
	output := JSONOutput{
		Descriptor:     opts.Descriptor,
		Missing:        []MissingVar{},
		Unused:         []string{},
		IgnoredMissing: result.IgnoredMissing,
		IgnoredUnused:  result.IgnoredUnused,
	}

	keys := make([]string, 0, len(result.Missing))
	for key := range result.Missing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		output.Missing = append(output.Missing, MissingVar{
			Key:            key,
			FullyDefaulted: result.AllDefaulted(key),
			Files:          fileRefs(result, key),
		})
	}

	// Add unused vars if not skipped
	if !opts.SkipUnused {
		output.Unused = append(output.Unused, result.Unused...)
		sort.Strings(output.Unused)
	}

	if opts.Verbose {
		output.Variables = variables(result)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// location renders "path:1,4" or just the path when lines are unknown
func location(ref FileRef) string {
	if len(ref.Lines) == 0 {
		return ref.Path
	}
	nums := make([]string, len(ref.Lines))
	for i, n := range ref.Lines {
		nums[i] = strconv.Itoa(n)
	}
	return ref.Path + ":" + strings.Join(nums, ",")
}

func (p printer) missingSection(result analyzer.ScanResult, title, color string, keys []string) {
	p.printf("%s%s%s:%s\n\n", p.c(colorBold), p.c(color), title, p.c(colorReset))
	for _, key := range keys {
		p.printf("  %s%s%s\n", p.c(color), key, p.c(colorReset))
		for _, ref := range fileRefs(result, key) {
			p.printf("    %sused in:%s %s%s%s", p.c(colorGray), p.c(colorReset), p.c(colorCyan), location(ref), p.c(colorReset))
			if ref.HasDefault {
				p.printf(" %s(has default)%s", p.c(colorYellow), p.c(colorReset))
			}
			p.printf("\n")
		}
		p.printf("\n")
	}
}

// formatHumanReadable outputs results in human-readable format
func formatHumanReadable(p printer, result analyzer.ScanResult, opts Options) error {
	hasIssues := false

	source := "the current environment"
	if opts.Descriptor != "" {
		source = opts.Descriptor
	}

	if hard := result.HardMisses(); len(hard) > 0 {
		hasIssues = true
		p.missingSection(result, "Missing environment variables in "+source, colorRed, hard)
	}

	if soft := result.SoftMisses(); len(soft) > 0 {
		hasIssues = true
		p.missingSection(result, "Missing but defaulted in code", colorYellow, soft)
	}

	// Unused variables
	if !opts.SkipUnused && len(result.Unused) > 0 {
		hasIssues = true
		p.printf("%s%sUnused variables in %s:%s\n\n", p.c(colorBold), p.c(colorYellow), source, p.c(colorReset))
		for _, key := range result.Unused {
			p.printf("  %s%s%s\n", p.c(colorYellow), key, p.c(colorReset))
		}
		p.printf("\n")
	}

	if opts.Verbose {
		vars := variables(result)
		p.printf("%s%sDiscovered variables (%d):%s\n\n", p.c(colorBold), p.c(colorCyan), len(vars), p.c(colorReset))
		width := 0
		for _, v := range vars {
			width = max(width, len(v.Key))
		}
		for _, v := range vars {
			noun := "files"
			if v.Files == 1 {
				noun = "file"
			}
			p.printf("  %-*s %s%d %s%s\n", width, v.Key, p.c(colorGray), v.Files, noun, p.c(colorReset))
		}
		p.printf("\n")
	}

	// Show ignored counts
	if result.IgnoredMissing > 0 {
		p.printf("%s%sNote:%s %d missing variable(s) were ignored (configured in %s)\n", p.c(colorGray), p.c(colorBold), p.c(colorReset), result.IgnoredMissing, config.FileName)
	}
	if result.IgnoredUnused > 0 {
		p.printf("%s%sNote:%s %d unused variable(s) were ignored (configured in %s)\n", p.c(colorGray), p.c(colorBold), p.c(colorReset), result.IgnoredUnused, config.FileName)
	}
	if result.IgnoredMissing > 0 || result.IgnoredUnused > 0 {
		p.printf("\n")
	}

	// No issues found
	if !hasIssues {
		ignoredCount := result.IgnoredMissing + result.IgnoredUnused
		if ignoredCount > 0 {
			p.printf("%s%s✓ No issues found (excluding %d ignored via config).%s\n", p.c(colorGreen), p.c(colorBold), ignoredCount, p.c(colorReset))
		} else {
			p.printf("%s%s✓ No issues found. All environment variables are properly configured.%s\n", p.c(colorGreen), p.c(colorBold), p.c(colorReset))
		}
	}

	return nil
}

// ExitCode returns 1 when strict is set and a variable without an in-code
// default is missing. Unused variables and defaulted misses never fail a run.
func ExitCode(result analyzer.ScanResult, strict bool) int {
	if strict && result.HasHardMiss() {
		return 1
	}
	return 0
}

// FormatError formats an error message
func FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err)
}
