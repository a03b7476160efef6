package parser

import (
	"fmt"

	"github.com/jenian/envcheck/internal/languages"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageLoader loads Tree-Sitter grammars. A loader that fails for a
// language leaves that language's files unmasked.
type LanguageLoader interface {
	LoadJavaScript() (*sitter.Language, error)
	LoadTypeScript() (*sitter.Language, error)
	LoadTSX() (*sitter.Language, error)
	LoadGo() (*sitter.Language, error)
	LoadPython() (*sitter.Language, error)
	LoadRust() (*sitter.Language, error)
	LoadJava() (*sitter.Language, error)
}

// DefaultLanguageLoader loads the grammars compiled into the binary
type DefaultLanguageLoader struct{}

func (l *DefaultLanguageLoader) LoadJavaScript() (*sitter.Language, error) {
	langPtr := tree_sitter_javascript.Language()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load JavaScript language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadTypeScript() (*sitter.Language, error) {
	langPtr := tree_sitter_typescript.LanguageTypescript()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load TypeScript language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadTSX() (*sitter.Language, error) {
	langPtr := tree_sitter_typescript.LanguageTSX()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load TSX language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadGo() (*sitter.Language, error) {
	langPtr := tree_sitter_go.Language()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load Go language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadPython() (*sitter.Language, error) {
	langPtr := tree_sitter_python.Language()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load Python language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadRust() (*sitter.Language, error) {
	langPtr := tree_sitter_rust.Language()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load Rust language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

func (l *DefaultLanguageLoader) LoadJava() (*sitter.Language, error) {
	langPtr := tree_sitter_java.Language()
	if langPtr == nil {
		return nil, fmt.Errorf("failed to load Java language grammar")
	}
	return sitter.NewLanguage(langPtr), nil
}

// loadLanguage loads the Tree-Sitter language grammar for the given language
func loadLanguage(loader LanguageLoader, lang languages.Language) (*sitter.Language, error) {
	switch lang {
	case languages.LanguageJavaScript:
		return loader.LoadJavaScript()
	case languages.LanguageTypeScript:
		return loader.LoadTypeScript()
	case languages.LanguageTSX:
		return loader.LoadTSX()
	case languages.LanguageGo:
		return loader.LoadGo()
	case languages.LanguagePython:
		return loader.LoadPython()
	case languages.LanguageRust:
		return loader.LoadRust()
	case languages.LanguageJava:
		return loader.LoadJava()
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}
