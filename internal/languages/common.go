package languages

import (
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreMarker opts a line out of scanning when it is the last token on the line,
// e.g. `const x = process.env.X // envcheck:ignore`
const IgnoreMarker = "envcheck:ignore"

// Language represents a programming language
type Language string

const (
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageTSX        Language = "tsx"
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageRust       Language = "rust"
	LanguageJava       Language = "java"
	LanguageUnknown    Language = "unknown"
)

var validName = regexp.MustCompile(`^\w+$`)

// Match holds the environment variables recognized on a single line
type Match struct {
	Names     map[string]bool // Every variable read on the line
	Defaulted map[string]bool // Subset of Names read with an in-code fallback value
}

// NewMatch returns an empty match
func NewMatch() Match {
	return Match{
		Names:     make(map[string]bool),
		Defaulted: make(map[string]bool),
	}
}

// Add records a variable, marking it defaulted when hasDefault is set.
// Names that are empty or contain non-word characters are dropped.
func (m Match) Add(name string, hasDefault bool) {
	if !validName.MatchString(name) {
		return
	}
	m.Names[name] = true
	if hasDefault {
		m.Defaulted[name] = true
	}
}

// Empty reports whether nothing was recognized
func (m Match) Empty() bool {
	return len(m.Names) == 0
}

// Recognizer turns one line of source text into the variables it reads.
// Implementations never fail: unmatched text yields an empty Match.
type Recognizer interface {
	Recognize(line string) Match
}

// LanguageInfo contains the recognizer and comment query for a language
type LanguageInfo struct {
	Recognizer Recognizer
	// CommentQuery is the Tree-Sitter query capturing comment nodes as @comment
	CommentQuery string
}

// GetLanguageInfo returns the recognizer and comment query for a given language
func GetLanguageInfo(lang Language) *LanguageInfo {
	switch lang {
	case LanguageJavaScript, LanguageTypeScript, LanguageTSX:
		return &LanguageInfo{Recognizer: JavaScript, CommentQuery: JavaScriptCommentQuery}
	case LanguageGo:
		return &LanguageInfo{Recognizer: Go, CommentQuery: GoCommentQuery}
	case LanguagePython:
		return &LanguageInfo{Recognizer: Python, CommentQuery: PythonCommentQuery}
	case LanguageRust:
		return &LanguageInfo{Recognizer: Rust, CommentQuery: RustCommentQuery}
	case LanguageJava:
		return &LanguageInfo{Recognizer: Java, CommentQuery: JavaCommentQuery}
	default:
		return nil
	}
}

// Detect determines the language from the file extension
func Detect(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".tsx":
		return LanguageTSX
	case ".go":
		return LanguageGo
	case ".py":
		return LanguagePython
	case ".rs":
		return LanguageRust
	case ".java":
		return LanguageJava
	default:
		return LanguageUnknown
	}
}

// ForPath returns the recognizer registered for the file's extension
func ForPath(path string) (Recognizer, bool) {
	info := GetLanguageInfo(Detect(path))
	if info == nil {
		return nil, false
	}
	return info.Recognizer, true
}

// family is one kind of access pattern; it adds what it finds on line to m
type family interface {
	collect(line string, m Match)
}

// lineRecognizer applies the comment and ignore-marker policy shared by every
// language, then runs each family over the line
type lineRecognizer struct {
	commentPrefixes []string
	families        []family
}

func (r *lineRecognizer) Recognize(line string) Match {
	m := NewMatch()

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasSuffix(trimmed, IgnoreMarker) {
		return m
	}
	for _, prefix := range r.commentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return m
		}
	}

	for _, f := range r.families {
		f.collect(line, m)
	}
	return m
}

// keyPattern takes the variable name from whichever unnamed group matched.
// A non-blank "fallback" group marks that occurrence as defaulted; a fallback
// that is only a comma needs an argument after it.
type keyPattern struct {
	re       *regexp.Regexp
	fallback int
	// accept vets a match by its start offset, for boundaries the regexp
	// cannot express without consuming the preceding byte
	accept func(line string, start int) bool
}

func newKeyPattern(expr string) keyPattern {
	re := regexp.MustCompile(expr)
	return keyPattern{re: re, fallback: re.SubexpIndex("fallback")}
}

func (p keyPattern) collect(line string, m Match) {
	for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
		if p.accept != nil && !p.accept(line, loc[0]) {
			continue
		}

		name := ""
		for i := 1; 2*i < len(loc); i++ {
			if i == p.fallback || loc[2*i] < 0 {
				continue
			}
			if loc[2*i+1] > loc[2*i] {
				name = line[loc[2*i]:loc[2*i+1]]
				break
			}
		}

		hasDefault := false
		if p.fallback > 0 && loc[2*p.fallback] >= 0 {
			fallback := strings.TrimSpace(line[loc[2*p.fallback]:loc[2*p.fallback+1]])
			hasDefault = fallback != ""
			if fallback == "," {
				rest := strings.TrimLeft(line[loc[1]:], " \t")
				hasDefault = rest != "" && rest[0] != ')'
			}
		}
		m.Add(name, hasDefault)
	}
}

// destructuring handles `{ A, B: alias, C = fallback } = <env object>`.
// The first group must capture the text between the braces.
type destructuring struct {
	re *regexp.Regexp
}

func (d destructuring) collect(line string, m Match) {
	for _, sub := range d.re.FindAllStringSubmatch(line, -1) {
		for _, binding := range strings.Split(sub[1], ",") {
			// ':' renames the binding, '=' supplies a default
			key, fallback, hasFallback := strings.Cut(binding, "=")
			name, _, _ := strings.Cut(key, ":")
			m.Add(strings.TrimSpace(name), hasFallback && strings.TrimSpace(fallback) != "")
		}
	}
}

// quoted builds an alternation capturing a word between any of the given quotes
func quoted(quotes ...string) string {
	alts := make([]string, 0, len(quotes))
	for _, q := range quotes {
		alts = append(alts, regexp.QuoteMeta(q)+`(\w*)`+regexp.QuoteMeta(q))
	}
	return `(?:` + strings.Join(alts, "|") + `)`
}
