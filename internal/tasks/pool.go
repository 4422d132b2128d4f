package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/listenx/internal/models"
	"github.com/desertthunder/listenx/internal/shared"
)

const (
	DefaultWorkers = 8
	MaxWorkers     = 64
)

// PoolOpts configures track resolution for one playlist.
type PoolOpts struct {
	Workers   int     // concurrent fetches (default: 8, max: 64)
	RateLimit float64 // fetches per second across workers, 0 for unlimited
	FailFast  bool    // abort on the first failure instead of collecting it
}

// PoolOptsFromConfig maps the [fetch] config section.
func PoolOptsFromConfig(c shared.FetchConfig) PoolOpts {
	return PoolOpts{Workers: c.Workers, RateLimit: c.RateLimit, FailFast: c.FailFast}
}

func (o PoolOpts) normalized(jobs int) PoolOpts {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	o.Workers = min(o.Workers, MaxWorkers, max(jobs, 1))
	return o
}

func (o PoolOpts) limiter() *rate.Limiter {
	if o.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(o.RateLimit), 1)
}

// FetchFunc resolves one native track id.
type FetchFunc func(ctx context.Context, nativeID string) (*models.Track, error)

// Pool resolves track ids with a bounded number of workers.
type Pool struct {
	opts   PoolOpts
	logger *log.Logger
}

// NewPool creates a Pool. A nil logger discards output.
func NewPool(opts PoolOpts, logger *log.Logger) *Pool {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Pool{opts: opts, logger: logger}
}

type trackJob struct {
	index int
	id    string
}

type trackResult struct {
	index int
	id    string
	track *models.Track
	err   error
}

// Resolve fetches every id and returns tracks in the order of ids.
//
// In partial mode failures are returned as [models.FailedTrack] values and the error is only
// set when ctx ends. With FailFast the first failure cancels outstanding fetches and is returned.
func (p *Pool) Resolve(ctx context.Context, ids []string, fetch FetchFunc, progress chan<- ProgressUpdate) ([]models.Track, []models.FailedTrack, error) {
	if len(ids) == 0 {
		return []models.Track{}, nil, nil
	}
	opts := p.opts.normalized(len(ids))
	limiter := opts.limiter()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan trackJob, len(ids))
	results := make(chan trackResult, len(ids))
	for i, id := range ids {
		jobs <- trackJob{index: i, id: id}
	}
	close(jobs)

	var wg sync.WaitGroup
	for range opts.Workers {
		wg.Add(1)
		go p.worker(ctx, &wg, limiter, fetch, jobs, results)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]trackResult, len(ids))
	var firstErr error
	completed := 0
	for res := range results {
		completed++
		ordered[res.index] = res

		if res.err != nil {
			sendProgress(progress, trackFailedUpdate(completed, len(ids), res.id, res.err))
			if opts.FailFast && firstErr == nil {
				firstErr = fmt.Errorf("track %s: %w", res.id, res.err)
				cancel()
			}
			continue
		}
		sendProgress(progress, trackResolvedUpdate(completed, len(ids), res.track))
	}

	if firstErr != nil {
		return nil, nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	tracks := make([]models.Track, 0, len(ids))
	var failed []models.FailedTrack
	for _, res := range ordered {
		if res.err != nil {
			p.logger.Warn("track fetch failed", "id", res.id, "kind", shared.ErrorKind(res.err), "err", res.err)
			failed = append(failed, models.FailedTrack{NativeID: res.id, Error: res.err.Error()})
			continue
		}
		tracks = append(tracks, *res.track)
	}
	return tracks, failed, nil
}

// worker drains jobs. After cancellation the remaining jobs are reported with the context error.
func (p *Pool) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	fetch FetchFunc,
	jobs <-chan trackJob,
	results chan<- trackResult,
) {
	defer wg.Done()

	for job := range jobs {
		res := trackResult{index: job.index, id: job.id}
		if err := limiter.Wait(ctx); err != nil {
			res.err = err
			results <- res
			continue
		}
		res.track, res.err = fetch(ctx, job.id)
		if res.err == nil && res.track == nil {
			res.err = fmt.Errorf("%w: %s", shared.ErrTrackNotFound, job.id)
		}
		results <- res
	}
}
