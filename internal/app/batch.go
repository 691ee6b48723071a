package app

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"travel_query/internal/domain"
)

// BatchInput is one link together with its line number in the source.
type BatchInput struct {
	Line int
	Raw  string
}

// ReadBatch reads one link per line, skipping blank lines and # comments.
// Line numbers count every line read.
func ReadBatch(r io.Reader) ([]BatchInput, error) {
	var out []BatchInput
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	for n := 1; sc.Scan(); n++ {
		if l := strings.TrimSpace(sc.Text()); l != "" && !strings.HasPrefix(l, "#") {
			out = append(out, BatchInput{Line: n, Raw: l})
		}
	}
	return out, sc.Err()
}

// BatchResult is the outcome for one input line. Record is set only when
// the batch was saving.
type BatchResult struct {
	Line   int
	Input  string
	Link   domain.DecodedLink
	Record *domain.SearchRecord
	Err    error
}

// DecodeBatch decodes links with at most workers in flight. When links is
// non-nil every decoded link is also imported. Results keep input order.
func DecodeBatch(ctx context.Context, inputs []BatchInput, workers int, links *LinkService) ([]BatchResult, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]BatchResult, len(inputs))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, in := range inputs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return out[:i], err
		}

		wg.Add(1)
		go func(i int, in BatchInput) {
			defer wg.Done()
			defer sem.Release(1)

			raw := in.Raw
			res := BatchResult{Line: in.Line, Input: raw}
			if links != nil {
				rec, d, err := links.ImportLink(ctx, raw)
				res.Link, res.Err = d, err
				if err == nil {
					res.Record = &rec
				}
			} else {
				res.Link, res.Err = DecodeLink(raw)
			}
			out[i] = res
		}(i, in)
	}

	wg.Wait()
	return out, nil
}
