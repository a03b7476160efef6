package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jenian/envcheck/internal/languages"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func relPaths(t *testing.T, root string, files []FileInfo) []string {
	t.Helper()
	paths := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatalf("Failed to relativize %s: %v", f.Path, err)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	sort.Strings(paths)
	return paths
}

func assertPaths(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestScanner_Scan(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"src/app.js":           "console.log('test');",
		"src/app.go":           "package main",
		"src/app.py":           "print('test')",
		"src/view.tsx":         "export {}",
		"node_modules/lib.js":  "module.exports = {};",
		"src/readme.txt":       "readme content",
		"serverless.yml":       "service: api",
		".serverless/state.js": "x",
	})

	files, err := NewScanner().Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	assertPaths(t, relPaths(t, tmpDir, files), []string{"src/app.go", "src/app.js", "src/app.py", "src/view.tsx"})

	for _, file := range files {
		if file.Language != languages.Detect(file.Path) {
			t.Errorf("%s: language %v does not match extension", file.Path, file.Language)
		}
	}
}

func TestScanner_ExcludeGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"test.js":          "test",
		"test.go":          "test",
		"pkg/deep/more.go": "test",
	})

	scanner := NewScanner()
	if err := scanner.SetExcludeGlobs([]string{"*.go"}); err != nil {
		t.Fatalf("SetExcludeGlobs failed: %v", err)
	}

	files, err := scanner.Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// Should only find .js file
	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(files))
	}
	if files[0].Language != languages.LanguageJavaScript {
		t.Errorf("Expected JavaScript file, got %v", files[0].Language)
	}
}

func TestScanner_IncludeGlobs(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"handlers/create.js": "x",
		"handlers/list.js":   "x",
		"lib/util.js":        "x",
		"lib/util.py":        "x",
	})

	scanner := NewScanner()
	if err := scanner.SetIncludeGlobs([]string{"handlers/**"}); err != nil {
		t.Fatalf("SetIncludeGlobs failed: %v", err)
	}
	// Include globs take precedence over excludes
	if err := scanner.SetExcludeGlobs([]string{"*.js"}); err != nil {
		t.Fatalf("SetExcludeGlobs failed: %v", err)
	}

	files, err := scanner.Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	assertPaths(t, relPaths(t, tmpDir, files), []string{"handlers/create.js", "handlers/list.js"})
}

func TestScanner_InvalidGlob(t *testing.T) {
	scanner := NewScanner()
	if err := scanner.SetIncludeGlobs([]string{"[unclosed"}); err == nil {
		t.Fatal("Expected an error for an invalid glob")
	}
	if _, err := scanner.Scan(t.TempDir()); err == nil {
		t.Error("Scan should surface the invalid glob")
	}
}

func TestScanner_AddExcludeDirs(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"src/app.js":             "x",
		"src/config/local.js":    "x",
		"scripts/seed.py":        "x",
		"lib/scripts/helper.py":  "x",
		"k8s/jobs/render.go":     "x",
		"src/configuration/a.js": "x",
	})

	scanner := NewScanner()
	scanner.AddExcludeDirs([]string{"scripts", "src/config", "k8s/*"})

	files, err := scanner.Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	assertPaths(t, relPaths(t, tmpDir, files), []string{"src/app.js", "src/configuration/a.js"})
}

func TestScanner_MissingRoot(t *testing.T) {
	if _, err := NewScanner().Scan(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected an error for a missing root")
	}
}
