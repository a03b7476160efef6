package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/jenian/envcheck/internal/analyzer"
)

// Delimiter separates the file path from the line text in a listing record,
// e.g. the output of `grep -R process.env src | sed 's/:/::\t/'`
const Delimiter = "::\t"

const maxListingLine = 1024 * 1024

// ReadListing reads "path::\tline" records. Records without the delimiter are
// skipped. Line numbers are not part of the format and are left at zero.
func ReadListing(r io.Reader) ([]analyzer.Line, error) {
	var lines []analyzer.Line

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxListingLine)
	for sc.Scan() {
		path, text, ok := strings.Cut(strings.TrimSuffix(sc.Text(), "\r"), Delimiter)
		if !ok || path == "" {
			continue
		}
		lines = append(lines, analyzer.Line{Path: path, Text: text})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing: %w", err)
	}
	return lines, nil
}
