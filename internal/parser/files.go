package parser

import (
	"context"
	"log/slog"

	"github.com/jenian/envcheck/internal/analyzer"
	"github.com/jenian/envcheck/internal/scanner"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of files read and recognized concurrently
const DefaultWorkers = 8

// ParseFiles reads and recognizes files on a bounded pool. Each file gets its
// own index which is merged once every worker is done, so no lock guards the
// result. Unreadable files are logged and skipped; the only error is a
// cancelled context.
func (p *Parser) ParseFiles(ctx context.Context, files []scanner.FileInfo, root string, workers int) (analyzer.UsageIndex, error) {
	if workers < 1 {
		workers = DefaultWorkers
	}

	partial := make([]analyzer.UsageIndex, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			lines, err := p.ParseFile(file.Path, file.Language, root)
			if err != nil {
				slog.Warn("skipping file", "path", file.Path, "error", err)
				return nil
			}
			partial[i] = analyzer.Aggregate(lines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := make(analyzer.UsageIndex)
	for _, idx := range partial {
		index.Merge(idx)
	}
	return index, nil
}
