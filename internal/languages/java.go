package languages

// JavaCommentQuery captures Java line and block comments
const JavaCommentQuery = `[(line_comment) (block_comment)] @comment`

// Java recognizes System.getenv("KEY") and the map form System.getenv().get("KEY");
// System.getenv().getOrDefault("KEY", fallback) is defaulted.
var Java Recognizer = &lineRecognizer{
	commentPrefixes: []string{"//", "/*"},
	families: []family{
		newKeyPattern(`\bSystem\.getenv\(\s*"(\w*)"\s*\)`),
		newKeyPattern(`\bSystem\.getenv\(\)\.get(?:OrDefault)?\(\s*"(\w*)"\s*(?P<fallback>,)?`),
	},
}
