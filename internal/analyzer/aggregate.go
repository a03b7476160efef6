package analyzer

import (
	"slices"
	"sort"

	"github.com/jenian/envcheck/internal/languages"
)

func newRecord(file string) *UsageRecord {
	return &UsageRecord{
		File:      file,
		Names:     make(map[string]bool),
		Defaulted: make(map[string]bool),
		Lines:     make(map[string][]int),
	}
}

// Aggregate recognizes every line and folds the results into a UsageIndex.
// The result does not depend on the order of lines.
func Aggregate(lines []Line) UsageIndex {
	idx := make(UsageIndex)
	for _, line := range lines {
		idx.Add(line)
	}
	return idx
}

// Add recognizes one line and folds its variables into the file's record.
// Lines of files without a registered recognizer are skipped entirely, and a
// record is only created once the file yields at least one variable.
func (idx UsageIndex) Add(line Line) {
	recognizer, ok := languages.ForPath(line.Path)
	if !ok {
		return
	}

	match := recognizer.Recognize(line.Text)
	if match.Empty() {
		return
	}

	rec, ok := idx[line.Path]
	if !ok {
		rec = newRecord(line.Path)
		idx[line.Path] = rec
	}
	for name := range match.Names {
		rec.Names[name] = true
		if match.Defaulted[name] {
			rec.Defaulted[name] = true
		}
		if line.Number > 0 {
			rec.Lines[name] = insertLine(rec.Lines[name], line.Number)
		}
	}
}

// Merge folds other into r as a set union
func (r *UsageRecord) Merge(other *UsageRecord) {
	for name := range other.Names {
		r.Names[name] = true
	}
	for name := range other.Defaulted {
		r.Defaulted[name] = true
	}
	for name, lines := range other.Lines {
		for _, n := range lines {
			r.Lines[name] = insertLine(r.Lines[name], n)
		}
	}
}

// Merge folds other into idx. The union is commutative and associative, so
// per-file indexes built in any order merge to the same result.
func (idx UsageIndex) Merge(other UsageIndex) {
	for file, rec := range other {
		if rec == nil || len(rec.Names) == 0 {
			continue
		}
		dst, ok := idx[file]
		if !ok {
			dst = newRecord(file)
			idx[file] = dst
		}
		dst.Merge(rec)
	}
}

// Needed inverts the index into variable -> referencing files
func (idx UsageIndex) Needed() NeededMap {
	needed := make(NeededMap)
	for file, rec := range idx {
		for name := range rec.Names {
			if needed[name] == nil {
				needed[name] = make(map[string]bool)
			}
			needed[name][file] = true
		}
	}
	return needed
}

// Files returns the indexed file paths in sorted order
func (idx UsageIndex) Files() []string {
	files := make([]string, 0, len(idx))
	for file := range idx {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// insertLine adds n to the sorted slice unless it is already present
func insertLine(lines []int, n int) []int {
	i := sort.SearchInts(lines, n)
	if i < len(lines) && lines[i] == n {
		return lines
	}
	return slices.Insert(lines, i, n)
}
