package languages

import (
	"regexp"
	"strings"
)

// JavaScriptCommentQuery captures comments in JavaScript, TypeScript and TSX grammars
const JavaScriptCommentQuery = `(comment) @comment`

// jsAccessor matches the object holding the environment: process.env, import.meta.env,
// or a bare `env` (see bareEnvBoundary)
const jsAccessor = `(?:\bprocess\.env|\bimport\.meta\.env|\benv)`

// jsFallback is a logical OR (or nullish coalescing) directly after the access
const jsFallback = `(?P<fallback>\s*(?:\|\||\?\?))?`

// JavaScript recognizes environment reads in JavaScript and TypeScript:
//
//	process.env.KEY              process.env['KEY'] / process.env["KEY"]
//	process.env.KEY || 'x'       (defaulted)
//	const { A, B: b, C = 1 } = process.env
var JavaScript Recognizer = &lineRecognizer{
	commentPrefixes: []string{"//", "/*"},
	families: []family{
		jsKeyPattern(jsAccessor + `\.(\w*)` + jsFallback),
		jsKeyPattern(jsAccessor + `\[\s*` + quoted("'", `"`, "`") + `\s*\]` + jsFallback),
		destructuring{re: regexp.MustCompile(`\{([^{}]*)\}\s*(?::\s*[\w.<>]+\s*)?=\s*(?:process\.env|import\.meta\.env|\benv)(?:[^\w.\[]|$)`)},
	},
}

func jsKeyPattern(expr string) keyPattern {
	p := newKeyPattern(expr)
	p.accept = bareEnvBoundary
	return p
}

// bareEnvBoundary rejects a bare `env` that is part of a path, a string or a
// longer member chain, such as './env.js' or config.env.KEY
func bareEnvBoundary(line string, start int) bool {
	if start == 0 || !strings.HasPrefix(line[start:], "env") {
		return true
	}
	return !strings.ContainsRune(`.$/'"`+"`", rune(line[start-1]))
}
