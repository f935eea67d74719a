package gracon

import (
	"context"
	"runtime"
	"sync"

	"github.com/bodgit/gracon/tile"
	"github.com/pkg/errors"
)

const (
	// thresholdStep is the first increase of the tile threshold when
	// there are too many tiles, each further increase is half as big
	// again.
	thresholdStep = 10
)

func (c *Compiler) emitSets(ctx context.Context, sets []*tile.Set) (<-chan *tile.Set, <-chan error, error) {
	out := make(chan *tile.Set)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, s := range sets {
			select {
			case out <- s:
			case <-ctx.Done():
				errc <- errors.New("gracon: cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func (c *Compiler) setWorker(ctx context.Context, in <-chan *tile.Set, fn func(*tile.Set) error) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for s := range in {
			if err := fn(s); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// forEachSet runs fn on every set using a pool of workers and returns the
// first error
func (c *Compiler) forEachSet(sets []*tile.Set, fn func(*tile.Set) error) error {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	in, errc, err := c.emitSets(ctx, sets)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(sets) {
		workers = len(sets)
	}
	for i := 0; i < workers; i++ {
		errc, err := c.setWorker(ctx, in, fn)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

// overBudget returns the index of the first set with more real tiles than
// allowed, or -1
func (c *Compiler) overBudget(sets []*tile.Set) (int, int) {
	for i, s := range sets {
		if n := len(s.Real()); n > c.maxTiles() {
			return i, n
		}
	}
	return -1, 0
}

// dedup deduplicates copies of sets, raising the tile threshold until every
// set fits within the tile budget. It returns the deduplicated sets along
// with the final threshold and how many times it was raised.
func (c *Compiler) dedup(sets []*tile.Set) ([]*tile.Set, int, int, error) {
	if !c.cfg.Optimize {
		if i, n := c.overBudget(sets); i >= 0 {
			return nil, 0, 0, errors.Wrapf(ErrTileBudget, "%d tiles in set %d, maximum is %d", n, i, c.maxTiles())
		}
		return sets, 0, 0, nil
	}

	threshold, step := c.cfg.TileThreshold, thresholdStep
	for retries := 0; ; retries++ {
		work := make([]*tile.Set, len(sets))
		for i, s := range sets {
			work[i] = s.Clone()
		}

		t := threshold
		if err := c.forEachSet(work, func(s *tile.Set) error {
			tile.Dedup(s, t)
			return nil
		}); err != nil {
			return nil, 0, 0, err
		}

		i, n := c.overBudget(work)
		if i < 0 {
			return work, threshold, retries, nil
		}

		if retries == c.cfg.MaxRetries {
			return nil, 0, 0, errors.Wrapf(ErrTileBudget, "%d tiles in set %d after %d retries with threshold %d, maximum is %d", n, i, retries, threshold, c.maxTiles())
		}

		threshold += step
		step += step / 2

		c.logger.Printf("Maximum of %d tiles exceeded with %d, running again with threshold %d\n", c.maxTiles(), n, threshold)
	}
}
