package languages

// RustCommentQuery captures Rust line and block comments
const RustCommentQuery = `[(line_comment) (block_comment)] @comment`

// Rust recognizes env::var("KEY"), std::env::var_os("KEY") and the env!/option_env!
// macros. `.unwrap_or*` after the call and option_env! count as defaulted.
var Rust Recognizer = &lineRecognizer{
	commentPrefixes: []string{"//", "/*"},
	families: []family{
		newKeyPattern(`\b(?:std::)?env::var(?:_os)?\(\s*"(\w*)"\s*\)(?P<fallback>\s*\.unwrap_or(?:_else|_default)?\b)?`),
		newKeyPattern(`\b(?P<fallback>option_)?env!\(\s*"(\w*)"`),
	},
}
