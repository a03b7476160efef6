package analyzer

import (
	"sort"

	"github.com/jenian/envcheck/internal/config"
)

// Reconcile compares the variables read in code with the variables available at runtime.
// available: variables considered satisfied (the declared set, or the live environment)
// declared: variables declared in the deployment descriptor, nil when there is no descriptor;
// unused variables are only reported relative to a descriptor
// cfg: configuration for ignoring variables, may be nil
func Reconcile(index UsageIndex, available map[string]bool, declared map[string]bool, cfg *config.Config) ScanResult {
	needed := index.Needed()
	result := ScanResult{
		Index:         index,
		Needed:        needed,
		Missing:       make(map[string][]string),
		Unused:        []string{},
		HasDescriptor: declared != nil,
	}

	for name, files := range needed {
		if available[name] {
			continue
		}
		if cfg != nil && cfg.ShouldIgnoreMissing(name) {
			result.IgnoredMissing++
			continue
		}
		result.Missing[name] = sortedKeys(files)
	}

	if declared != nil {
		for name := range declared {
			if _, ok := needed[name]; ok {
				continue
			}
			if cfg != nil && cfg.ShouldIgnoreUnused(name) {
				result.IgnoredUnused++
				continue
			}
			result.Unused = append(result.Unused, name)
		}
		sort.Strings(result.Unused)
	}

	return result
}

// HasDefault reports whether file reads name with an in-code fallback
func (r ScanResult) HasDefault(file, name string) bool {
	rec, ok := r.Index[file]
	return ok && rec.Defaulted[name]
}

// AllDefaulted reports whether every file reading name supplies a fallback.
// Variables that no file reads are never considered defaulted.
func (r ScanResult) AllDefaulted(name string) bool {
	files := r.Needed[name]
	if len(files) == 0 {
		return false
	}
	for file := range files {
		if !r.HasDefault(file, name) {
			return false
		}
	}
	return true
}

// HardMisses returns the missing variables with at least one read lacking a fallback, sorted
func (r ScanResult) HardMisses() []string {
	return r.missingWhere(func(name string) bool { return !r.AllDefaulted(name) })
}

// SoftMisses returns the missing variables that every reader defaults, sorted
func (r ScanResult) SoftMisses() []string {
	return r.missingWhere(r.AllDefaulted)
}

// HasHardMiss returns true if any missing variable is read without a fallback
func (r ScanResult) HasHardMiss() bool {
	for name := range r.Missing {
		if !r.AllDefaulted(name) {
			return true
		}
	}
	return false
}

// Variables returns every variable read in code, sorted
func (r ScanResult) Variables() []string {
	return sortedKeys(r.Needed)
}

func (r ScanResult) missingWhere(keep func(string) bool) []string {
	names := []string{}
	for name := range r.Missing {
		if keep(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
