package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/1F47E/point-within-poly/pkg/models"
)

// minChunk keeps tiny layers from being split across goroutines
const minChunk = 256

// EnrichConcurrent classifies points with up to workers goroutines. Each
// goroutine fills its own contiguous range, so the result is identical to
// Enrich; when several ranges fail the error of the lowest range is returned.
func (c *Classifier) EnrichConcurrent(ctx context.Context, points []models.PlacemarkPoint, workers int) ([]models.EnrichedRecord, error) {
	if workers <= 1 || len(points) <= minChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c.Enrich(points)
	}

	batchSize := (len(points) + workers - 1) / workers
	if batchSize < minChunk {
		batchSize = minChunk
	}
	numBatches := (len(points) + batchSize - 1) / batchSize

	records := make([]models.EnrichedRecord, len(points))
	errs := make([]error, numBatches)

	var g errgroup.Group
	g.SetLimit(workers)
	for b := 0; b < numBatches; b++ {
		start := b * batchSize
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[b] = err
				return nil
			}
			errs[b] = c.enrichRange(points, records, start, end)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}
