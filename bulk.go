package pef

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EncodeAll encodes many sequences concurrently and returns the
// results in input order. Each individual construction is still
// single-threaded; parallelism is across sequences, bounded by
// GOMAXPROCS. The first failure cancels the remaining work.
func EncodeAll(ctx context.Context, sequences [][]uint64, opts ...Option) ([]*Encoded, error) {
	results := make([]*Encoded, len(sequences))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, seq := range sequences {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := Encode(seq, opts...)
			if err != nil {
				return err
			}
			results[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
