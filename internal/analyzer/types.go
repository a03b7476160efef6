package analyzer

// Line is one (filePath, lineText) pair supplied by file discovery
type Line struct {
	Path   string // File path, used as the UsageIndex key
	Number int    // 1-based line number, 0 when the source cannot tell
	Text   string // Raw line content
}

// UsageRecord holds the environment variables read by a single source file
type UsageRecord struct {
	File      string
	Names     map[string]bool  // Every variable the file reads; never empty
	Defaulted map[string]bool  // Subset of Names read with an in-code fallback at least once
	Lines     map[string][]int // Sorted line numbers per variable, when known
}

// UsageIndex maps a file path to its usage record
type UsageIndex map[string]*UsageRecord

// NeededMap maps a variable name to the set of files that read it
type NeededMap map[string]map[string]bool

// ScanResult contains the complete reconciliation results
type ScanResult struct {
	Index          UsageIndex          // Per-file usages the result was computed from
	Needed         NeededMap           // Every variable read in code, with its files
	Missing        map[string][]string // Needed but not available, with sorted referencing files
	Unused         []string            // Declared but never read, sorted (descriptor mode only)
	HasDescriptor  bool                // True when compared against a descriptor instead of the live environment
	IgnoredMissing int                 // Count of missing variables that were ignored via config
	IgnoredUnused  int                 // Count of unused variables that were ignored via config
}
