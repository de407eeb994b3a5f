package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// ErrorPolicy decides what happens to a document when one of its pages fails.
type ErrorPolicy int

const (
	// AbortDocument stops processing the document on the first page error.
	// Other documents in the batch are unaffected.
	AbortDocument ErrorPolicy = iota

	// KeepOriginal substitutes the unprocessed page (or a blank page when
	// even rasterization failed) and continues with the rest of the
	// document.
	KeepOriginal
)

// ParseErrorPolicy maps the CLI/config spelling of a policy to its value.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch s {
	case "abort":
		return AbortDocument, nil
	case "keep-original":
		return KeepOriginal, nil
	default:
		return 0, fmt.Errorf("unknown error policy %q (want \"abort\" or \"keep-original\")", s)
	}
}

func (p ErrorPolicy) String() string {
	if p == KeepOriginal {
		return "keep-original"
	}
	return "abort"
}

// pageJob produces the cleaned image for one page index. fallback is
// consulted under the KeepOriginal policy when the job fails; it returns the
// substitute page image.
type pageJob func(ctx context.Context, page int) (image.Image, error)

// mapPages runs job for every page index in [0, pages) on a bounded worker
// pool and returns the results in page order.
//
// Page images at high DPI can run to tens of megabytes, so the worker count
// caps peak memory as well as CPU. Under AbortDocument the first page error
// cancels the remaining jobs and is returned with its page index attached;
// under KeepOriginal the fallback image is substituted and the error is
// reported through onSkip.
func mapPages(ctx context.Context, pages, workers int, policy ErrorPolicy,
	job pageJob, fallback func(page int) image.Image, onSkip func(page int, err error)) ([]image.Image, error) {

	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]image.Image, pages)
	errs := make([]error, pages)
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range jobs {
				img, err := job(ctx, page)
				if err != nil {
					errs[page] = err
					if policy == AbortDocument {
						cancel()
						continue
					}
					img = fallback(page)
				}
				results[page] = img
			}
		}()
	}

feed:
	for page := 0; page < pages; page++ {
		select {
		case jobs <- page:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for page, err := range errs {
		if err == nil {
			continue
		}
		if policy == AbortDocument {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		if onSkip != nil {
			onSkip(page, err)
		}
	}

	// The abort path has already returned above, so a non-nil ctx.Err() here
	// can only come from the caller's context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
