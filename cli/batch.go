package cli

import (
	"context"
	"os"

	"dxf/dwire"
	"dxf/entity"
	"dxf/log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var lgr = log.WithModule("batch")

// FileResult is the outcome of decoding one file. The document holds no
// records when Err is set.
type FileResult struct {
	*entity.Document
	Path string
	// Size is the number of bytes consumed from the file.
	Size uint64
	Err  error
}

type BatchOptions struct {
	Workers int
	Version dwire.Version
	Reader  dwire.ReaderConfig
}

// DecodeFiles decodes every path on its own stream, at most opts.Workers at
// a time. Results are returned in the order of paths. A file that fails to
// decode does not stop the others; only cancellation of ctx does.
func DecodeFiles(ctx context.Context, paths []string, opts BatchOptions) ([]*FileResult, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	results := make([]*FileResult, len(paths))
	for i, path := range paths {
		if err := sem.Acquire(gCtx, 1); err != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			defer sem.Release(1)
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = DecodeFile(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		freeResults(results)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		freeResults(results)
		return nil, err
	}
	return results, nil
}

func DecodeFile(path string, opts BatchOptions) *FileResult {
	res := &FileResult{
		Document: &entity.Document{Version: opts.Version},
		Path:     path,
	}
	f, err := os.Open(path)
	if err != nil {
		res.Err = errors.Wrap(err, "error opening file")
		return res
	}
	defer f.Close()

	cr := NewCountingReader(f)
	r := dwire.NewConfiguredReader(cr, opts.Version, path, opts.Reader)
	res.Document, res.Err = entity.DecodeDocument(r)
	res.Size = cr.Count()
	if res.Err != nil {
		lgr.Debug("error decoding file", "path", path, "err", res.Err)
		return res
	}
	lgr.Debug("decoded file", "path", path, "records", len(res.Records), "bytes", res.Size, "warnings", len(res.Diagnostics))
	return res
}

func freeResults(results []*FileResult) {
	for _, res := range results {
		if res != nil {
			res.Free()
		}
	}
}
