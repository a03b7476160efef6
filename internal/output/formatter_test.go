package output

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/jenian/envcheck/internal/config"
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool)
	for _, n := range names {
		m[n] = true
	}
	return m
}

// sampleResult has a hard miss (DB_HOST), a soft miss (DB_PORT) and an unused variable
func sampleResult() analyzer.ScanResult {
	idx := analyzer.Aggregate([]analyzer.Line{
		{Path: "a.js", Number: 1, Text: `const { DB_PORT = 5432 } = process.env`},
		{Path: "a.js", Number: 4, Text: `const host = process.env.DB_HOST`},
		{Path: "b.js", Number: 2, Text: `const host = process.env.DB_HOST || 'localhost'`},
		{Path: "b.js", Number: 9, Text: `const key = process.env.API_KEY`},
	})
	declared := set("API_KEY", "EXTRA_VAR")
	return analyzer.Reconcile(idx, declared, declared, nil)
}

func TestFormat_Silent(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, sampleResult(), Options{Silent: true, JSON: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output in silent mode, got %q", buf.String())
	}
}

func TestFormat_HumanReadable(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, sampleResult(), Options{Descriptor: "serverless.yml"}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()

	expected := `Missing environment variables in serverless.yml:

  DB_HOST
    used in: a.js:4
    used in: b.js:2 (has default)

Missing but defaulted in code:

  DB_PORT
    used in: a.js:1 (has default)

Unused variables in serverless.yml:

  EXTRA_VAR

`
	if out != expected {
		t.Errorf("Unexpected output:\n%s\nwant:\n%s", out, expected)
	}
	if strings.Contains(out, "\033[") {
		t.Error("A buffer is not a terminal and must not receive color codes")
	}
}

func TestFormat_SkipUnusedAndLiveEnvironment(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, sampleResult(), Options{SkipUnused: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Missing environment variables in the current environment:") {
		t.Errorf("Expected live environment heading, got:\n%s", out)
	}
	if strings.Contains(out, "Unused") {
		t.Errorf("Unused section should be skipped, got:\n%s", out)
	}
}

func TestFormat_Verbose(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, sampleResult(), Options{Verbose: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Discovered variables (3):",
		"  API_KEY 1 file\n",
		"  DB_HOST 2 files\n",
		"  DB_PORT 1 file\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormat_NoIssues(t *testing.T) {
	idx := analyzer.Aggregate([]analyzer.Line{{Path: "a.js", Text: `process.env.A`}})

	var buf bytes.Buffer
	if err := Format(&buf, analyzer.Reconcile(idx, set("A"), set("A"), nil), Options{}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if buf.String() != "✓ No issues found. All environment variables are properly configured.\n" {
		t.Errorf("Unexpected output: %q", buf.String())
	}

	cfg := config.Default()
	cfg.Ignores.Missing = []string{"B"}
	idx = analyzer.Aggregate([]analyzer.Line{{Path: "a.js", Text: `process.env.A || process.env.B`}})
	buf.Reset()
	if err := Format(&buf, analyzer.Reconcile(idx, set("A"), set("A"), cfg), Options{}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "1 missing variable(s) were ignored (configured in .envcheck.config)") {
		t.Errorf("Expected ignore note, got:\n%s", out)
	}
	if !strings.Contains(out, "✓ No issues found (excluding 1 ignored via config).") {
		t.Errorf("Expected success line with exclusions, got:\n%s", out)
	}
}

func TestFormat_ListingWithoutLineNumbers(t *testing.T) {
	idx := analyzer.Aggregate([]analyzer.Line{{Path: "src/a.js", Text: `process.env.A`}})

	var buf bytes.Buffer
	if err := Format(&buf, analyzer.Reconcile(idx, set(), nil, nil), Options{}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(buf.String(), "    used in: src/a.js\n") {
		t.Errorf("Expected bare path without line numbers, got:\n%s", buf.String())
	}
}

func TestFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Format(&buf, sampleResult(), Options{JSON: true, Descriptor: "serverless.yml"}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var got JSONOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}

	expected := JSONOutput{
		Descriptor: "serverless.yml",
		Missing: []MissingVar{
			{Key: "DB_HOST", FullyDefaulted: false, Files: []FileRef{
				{Path: "a.js", Lines: []int{4}, HasDefault: false},
				{Path: "b.js", Lines: []int{2}, HasDefault: true},
			}},
			{Key: "DB_PORT", FullyDefaulted: true, Files: []FileRef{
				{Path: "a.js", Lines: []int{1}, HasDefault: true},
			}},
		},
		Unused: []string{"EXTRA_VAR"},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
	if strings.Contains(buf.String(), `"variables"`) {
		t.Error("variables should be omitted unless verbose")
	}
}

func TestFormat_JSONEmptyCollections(t *testing.T) {
	var buf bytes.Buffer
	result := analyzer.Reconcile(analyzer.UsageIndex{}, set(), nil, nil)
	if err := Format(&buf, result, Options{JSON: true, Verbose: true}); err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"missing": []`, `"unused": []`, `"descriptor": ""`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in output:\n%s", want, out)
		}
	}
}

func TestExitCode(t *testing.T) {
	hard := sampleResult()

	softIdx := analyzer.Aggregate([]analyzer.Line{{Path: "a.js", Text: `const { DB_HOST, DB_PORT = 5432 } = process.env`}})
	soft := analyzer.Reconcile(softIdx, set("DB_HOST"), set("DB_HOST", "EXTRA_VAR"), nil)

	tests := []struct {
		name   string
		result analyzer.ScanResult
		strict bool
		want   int
	}{
		{"hard miss strict", hard, true, 1},
		{"hard miss lenient", hard, false, 0},
		{"soft miss and unused strict", soft, true, 0},
		{"soft miss lenient", soft, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.result, tt.strict); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
