package queue

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/core/ports"
	"github.com/taskify/taskify-api/internal/pkg/metrics"
)

const channelBuffer = 256

// ErrPoolStopped is returned to callers once the pool's context is done.
var ErrPoolStopped = errors.New("hash pool stopped")

type hashJob struct {
	ctx  context.Context
	op   string
	run  func(ctx context.Context)
	done chan struct{}
}

// HashPool runs password hashing on a fixed set of workers so CPU-bound
// bcrypt work never occupies more than numWorkers cores. It implements
// ports.PasswordHasher by delegating to the wrapped hasher.
type HashPool struct {
	jobs    chan hashJob
	workers int
	hasher  ports.PasswordHasher
	stopped chan struct{}
	log     zerolog.Logger
}

// NewHashPool creates a HashPool with numWorkers workers.
// If numWorkers <= 0, GOMAXPROCS is used.
func NewHashPool(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *HashPool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &HashPool{
		jobs:    make(chan hashJob, channelBuffer),
		workers: numWorkers,
		hasher:  hasher,
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// and later submissions fail with ErrPoolStopped.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.stopped)
	}()
}

func (p *HashPool) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash string
		err  error
	)
	if serr := p.submit(ctx, "hash", func(ctx context.Context) {
		hash, err = p.hasher.Hash(ctx, plaintext)
	}); serr != nil {
		return "", serr
	}
	return hash, err
}

// Verify reports false when the comparison could not run, for example
// because ctx was cancelled while waiting for a worker.
func (p *HashPool) Verify(ctx context.Context, plaintext, hash string) bool {
	var ok bool
	if err := p.submit(ctx, "verify", func(ctx context.Context) {
		ok = p.hasher.Verify(ctx, plaintext, hash)
	}); err != nil {
		p.log.Debug().Err(err).Msg("password verify abandoned")
		return false
	}
	return ok
}

// submit blocks until a worker has run fn or ctx is done.
func (p *HashPool) submit(ctx context.Context, op string, fn func(ctx context.Context)) error {
	job := hashJob{ctx: ctx, op: op, run: fn, done: make(chan struct{})}

	select {
	case <-p.stopped:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- job:
		metrics.PasswordHashQueueDepth.Inc()
	}

	select {
	case <-job.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			metrics.PasswordHashQueueDepth.Dec()
			if job.ctx.Err() != nil {
				p.log.Debug().Str("op", job.op).Int("worker_id", id).Msg("skipping cancelled hash job")
				close(job.done)
				continue
			}
			start := time.Now()
			job.run(job.ctx)
			metrics.PasswordHashDuration.WithLabelValues(job.op).Observe(time.Since(start).Seconds())
			close(job.done)
		}
	}
}
