package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/pkg/concurrent"
)

// Job is one product to load and where to put it.
type Job struct {
	Product   catalog.Product
	Placement Placement
}

// Completion is the outcome of a Job. Exactly one of Model and Err is set.
type Completion struct {
	Job
	Model *Model
	Err   error
	Took  time.Duration
}

// PostFunc hands a completion to its owner and reports whether the owner
// accepted it.
type PostFunc func(Completion) bool

// Preloader runs loads off the owner's goroutine. It never touches scene
// state; results only leave through the PostFunc.
type Preloader struct {
	loader  Loader
	limit   int
	timeout time.Duration
	logger  log.Log
}

type PreloadOption func(*Preloader)

// WithConcurrency caps parallel loads. Zero means unbounded.
func WithConcurrency(n int) PreloadOption {
	return func(p *Preloader) { p.limit = n }
}

// WithTimeout bounds each load. Zero means no per-load deadline.
func WithTimeout(d time.Duration) PreloadOption {
	return func(p *Preloader) { p.timeout = d }
}

func WithLogger(l log.Log) PreloadOption {
	return func(p *Preloader) { p.logger = l }
}

func NewPreloader(loader Loader, opts ...PreloadOption) *Preloader {
	p := &Preloader{loader: loader, limit: 4, logger: log.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(log.Component("assets"))
	return p
}

// Jobs pairs products with their placements by product id.
func Jobs(products []catalog.Product, placements []Placement) []Job {
	at := make(map[string]Placement, len(placements))
	for _, pl := range placements {
		at[pl.ProductID] = pl
	}
	jobs := make([]Job, 0, len(products))
	for _, p := range products {
		if pl, ok := at[p.ID]; ok {
			jobs = append(jobs, Job{Product: p, Placement: pl})
		}
	}
	return jobs
}

// Run loads every job once and blocks until all have been posted. A failed
// load is logged and posted with an error wrapping ErrLoadFailed; it does not
// stop the others. Run returns ctx.Err() if ctx ends first.
func (p *Preloader) Run(ctx context.Context, jobs []Job, post PostFunc) error {
	err := concurrent.ForEach(ctx, jobs, p.limit, func(ctx context.Context, job Job) error {
		c := p.load(ctx, job)
		if !post(c) {
			p.logger.Debug("Completion dropped by closed owner", log.String("product", job.Product.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Preloader) load(ctx context.Context, job Job) Completion {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	model, err := p.loader.Load(ctx, job.Product.AssetURL)
	took := time.Since(start)
	if err == nil && model == nil {
		err = errNoModel
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrLoadFailed, job.Product.AssetURL, err)
		p.logger.Warn("Asset load failed",
			log.String("product", job.Product.ID),
			log.String("url", job.Product.AssetURL),
			log.Duration("took", took),
			log.Error(err),
		)
		return Completion{Job: job, Err: err, Took: took}
	}

	p.logger.Debug("Asset loaded",
		log.String("product", job.Product.ID),
		log.Int("parts", model.Count()),
		log.Duration("took", took),
	)
	return Completion{Job: job, Model: model, Took: took}
}
