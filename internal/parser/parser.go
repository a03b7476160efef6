package parser

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/jenian/envcheck/internal/languages"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// grammar is a loaded language together with its compiled comment query.
// query is nil when the query failed to compile for the grammar.
type grammar struct {
	language *sitter.Language
	query    *sitter.Query
}

// Parser turns source files into the line stream consumed by the recognizers
type Parser struct {
	loader   LanguageLoader
	grammars map[languages.Language]*grammar
	mu       sync.RWMutex
}

// NewParser creates a parser using the grammars compiled into the binary
func NewParser() *Parser {
	return NewParserWithLoader(&DefaultLanguageLoader{})
}

// NewParserWithLoader creates a parser that loads grammars through loader
func NewParserWithLoader(loader LanguageLoader) *Parser {
	return &Parser{
		loader:   loader,
		grammars: make(map[languages.Language]*grammar),
	}
}

// Close releases the compiled queries
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for lang, g := range p.grammars {
		if g.query != nil {
			g.query.Close()
		}
		delete(p.grammars, lang)
	}
}

// getGrammar returns the grammar for the given language, loading it if needed
func (p *Parser) getGrammar(lang languages.Language) (*grammar, error) {
	p.mu.RLock()
	if g, ok := p.grammars[lang]; ok {
		p.mu.RUnlock()
		return g, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if g, ok := p.grammars[lang]; ok {
		return g, nil
	}

	language, err := loadLanguage(p.loader, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
	}

	g := &grammar{language: language}
	if info := languages.GetLanguageInfo(lang); info != nil {
		queryStr := strings.TrimSpace(info.CommentQuery)
		if queryStr != "" {
			query, queryErr := sitter.NewQuery(language, queryStr)
			if queryErr != nil {
				// Grammar and query out of sync; lines are kept unmasked
				slog.Debug("comment query failed", "language", lang, "error", queryErr.Error())
			} else {
				g.query = query
			}
		}
	}

	p.grammars[lang] = g
	return g, nil
}

// ParseFile reads a file and returns its lines, dropping rows that consist
// entirely of comments. scanRoot is used to report paths relative to the scan.
// When the grammar cannot be used every line is returned.
func (p *Parser) ParseFile(filePath string, lang languages.Language, scanRoot string) ([]analyzer.Line, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	relPath := relativePath(filePath, scanRoot)
	rows := bytes.Split(content, []byte("\n"))

	masked := p.commentRows(content, rows, lang, filePath)

	lines := make([]analyzer.Line, 0, len(rows))
	for i, row := range rows {
		if masked[i] {
			continue
		}
		text := strings.TrimSuffix(string(row), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, analyzer.Line{Path: relPath, Number: i + 1, Text: text})
	}
	return lines, nil
}

// commentRows reports, per row, whether every non-blank byte on it belongs to
// a comment node
func (p *Parser) commentRows(content []byte, rows [][]byte, lang languages.Language, filePath string) []bool {
	masked := make([]bool, len(rows))

	g, err := p.getGrammar(lang)
	if err != nil {
		slog.Debug("grammar unavailable", "path", filePath, "language", lang, "error", err)
		return masked
	}
	if g.query == nil {
		return masked
	}

	// Tree-sitter parsers are not safe for concurrent use, one per file
	tsParser := sitter.NewParser()
	defer tsParser.Close()
	if err := tsParser.SetLanguage(g.language); err != nil {
		slog.Debug("failed to set language", "path", filePath, "language", lang, "error", err)
		return masked
	}

	tree := tsParser.Parse(content, nil)
	if tree == nil {
		slog.Debug("parse returned nil tree", "path", filePath, "language", lang)
		return masked
	}
	defer tree.Close()

	inComment := make([]bool, len(content))
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(g.query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			start, end := capture.Node.StartByte(), capture.Node.EndByte()
			for i := start; i < end && int(i) < len(content); i++ {
				inComment[i] = true
			}
		}
	}

	offset := 0
	for r, row := range rows {
		sawComment := false
		covered := true
		for i, b := range row {
			if inComment[offset+i] {
				sawComment = true
				continue
			}
			if b != ' ' && b != '\t' && b != '\r' {
				covered = false
				break
			}
		}
		masked[r] = sawComment && covered
		offset += len(row) + 1
	}
	return masked
}

// relativePath returns filePath relative to scanRoot with forward slashes,
// or filePath itself when no relative form exists
func relativePath(filePath, scanRoot string) string {
	relPath := filePath
	if scanRoot != "" {
		absScanRoot, err1 := filepath.Abs(scanRoot)
		absFilePath, err2 := filepath.Abs(filePath)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absScanRoot, absFilePath); err == nil && rel != "" {
				relPath = rel
			}
		}
	}
	return filepath.ToSlash(relPath)
}
