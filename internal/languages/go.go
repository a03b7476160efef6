package languages

// GoCommentQuery captures Go line and block comments
const GoCommentQuery = `(comment) @comment`

// Go recognizes os.Getenv("KEY"), os.LookupEnv("KEY") and syscall.Getenv("KEY").
// Go has no inline fallback form, so reads are never defaulted.
var Go Recognizer = &lineRecognizer{
	commentPrefixes: []string{"//", "/*"},
	families: []family{
		newKeyPattern(`\b(?:os|syscall)\.(?:Getenv|LookupEnv)\(\s*` + quoted(`"`, "`")),
	},
}
