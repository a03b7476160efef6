package languages

// PythonCommentQuery captures Python comments and bare string statements (docstrings)
const PythonCommentQuery = `[(comment) (expression_statement (string))] @comment`

// Python recognizes os.environ['KEY'], os.getenv("KEY"), os.getenvb(b"KEY") and
// os.environ.get("KEY"). A second argument, or an `or` right after the call,
// marks the read as defaulted.
var Python Recognizer = &lineRecognizer{
	commentPrefixes: []string{"#", `"""`, "'''"},
	families: []family{
		newKeyPattern(`\b(?:os\.)?environb?\[\s*b?` + quoted("'", `"`) + `\s*\]`),
		newKeyPattern(`\b(?:os\.)?(?:getenvb?|environb?\.get)\(\s*b?` + quoted("'", `"`) +
			`\s*(?P<fallback>,|\)\s*or\b)?`),
	},
}
