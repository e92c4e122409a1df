package engine

import (
	"context"
	"sync"

	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
)

// BatchItem is the outcome for one URL of a batch.
type BatchItem struct {
	Index   int
	URL     string
	Verdict *model.Verdict
	Err     error
}

// ClassifyBatch classifies urls with at most MaxConcurrency in flight and returns
// the items in input order. onDone, when non-nil, is called once per item as it
// completes, possibly from several goroutines at once. URLs still waiting for a
// slot when ctx ends get ctx's error.
func (e *Engine) ClassifyBatch(ctx context.Context, urls []string, onDone func(BatchItem)) []BatchItem {
	items := make([]BatchItem, len(urls))
	sem := make(chan struct{}, e.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	e.logger.Debug("starting batch",
		logging.Field{Key: "urls", Value: len(urls)},
		logging.Field{Key: "max_concurrency", Value: e.cfg.MaxConcurrency})

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			item := BatchItem{Index: i, URL: u}

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				item.Verdict, item.Err = e.Classify(ctx, u)
			case <-ctx.Done():
				item.Err = ctx.Err()
			}

			items[i] = item
			if onDone != nil {
				onDone(item)
			}
		}(i, u)
	}
	wg.Wait()
	return items
}
