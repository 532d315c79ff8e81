// Package soak drives a pool through a reproducible borrow/return workload and
// checks that instances are reused the way the pool promises.
package soak

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/errors"
	"github.com/ajitpratap0/stockpile/pkg/logger"
	"github.com/ajitpratap0/stockpile/pkg/metrics"
	"github.com/ajitpratap0/stockpile/pkg/observability"
	"github.com/ajitpratap0/stockpile/pkg/pool"
	"github.com/ajitpratap0/stockpile/pkg/prototypes"
)

// Pool is the part of *pool.Pool[*prototypes.Object] the runner drives.
type Pool interface {
	Borrow(key string) (*prototypes.Object, error)
	Return(obj *prototypes.Object) error
	KeyOf(obj *prototypes.Object) (string, bool)
	Stats() pool.Stats
}

// Runner performs Rounds rounds. In each round it borrows between one and
// Hold instances of every key, returns them all in shuffled order, then
// borrows once more and expects the instance it returned last.
type Runner struct {
	Pool   Pool
	Keys   []string
	Rounds int
	Hold   int
	Seed   int64

	// Optional
	Tracer  *observability.Tracer
	Metrics *metrics.Collector
	Log     *zap.Logger
}

// Report summarizes a run.
type Report struct {
	Rounds   int           `json:"rounds"`
	Borrows  int64         `json:"borrows"`
	Returns  int64         `json:"returns"`
	Stats    pool.Stats    `json:"stats"`
	Before   Resources     `json:"before"`
	After    Resources     `json:"after"`
	Duration time.Duration `json:"duration_ns"`
}

type held struct {
	obj *prototypes.Object
	key string
}

// Run executes the workload. It stops at the first failed pool call or
// reuse check, or when ctx is done, and returns the report so far together
// with the error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	if r.Pool == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "soak: no pool")
	}
	if len(r.Keys) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "soak: no keys to exercise")
	}
	hold := r.Hold
	if hold <= 0 {
		hold = 1
	}
	log := r.Log
	if log == nil {
		log = logger.Get()
	}
	log = log.Named("soak")
	tracer := r.Tracer
	if tracer == nil {
		tracer, _ = observability.NewTracer(config.TracingConfig{}, nil)
	}

	rng := rand.New(rand.NewSource(r.Seed)) //nolint:gosec // reproducible workload, not security
	monitor := newResourceMonitor()
	rep := &Report{Before: monitor.sample()}
	start := time.Now()

	ctx, span := tracer.StartSpan(ctx, "soak.run")
	span.SetAttribute("rounds", r.Rounds)
	span.SetAttribute("keys", len(r.Keys))

	var runErr error
	for i := 0; i < r.Rounds; i++ {
		if err := ctx.Err(); err != nil {
			runErr = errors.Wrap(err, errors.ErrorTypeInternal, "soak interrupted")
			break
		}
		timer := metrics.NewTimer("soak.round")
		err := tracer.Trace(ctx, "soak.round", func(context.Context) error {
			return r.round(rng, hold, rep)
		})
		if r.Metrics != nil {
			r.Metrics.ObserveRound(timer.Stop())
		}
		if err != nil {
			runErr = err
			errType := string(errors.TypeOf(err))
			span.AddEvent("soak.round_failed",
				attribute.Int("round", i),
				attribute.String("error_type", errType))
			log.Error("soak round failed",
				zap.Int("round", i),
				zap.String("error_type", errType),
				zap.Error(err))
			break
		}
		rep.Rounds++
	}
	span.Finish(runErr)

	rep.Duration = time.Since(start)
	rep.Stats = r.Pool.Stats()
	rep.After = monitor.sample()

	log.Info("soak finished",
		zap.Int("rounds", rep.Rounds),
		zap.Int64("borrows", rep.Borrows),
		zap.Int64("returns", rep.Returns),
		zap.Int64("spawned", rep.Stats.Spawned),
		zap.Uint64("rss_before", rep.Before.RSS),
		zap.Uint64("rss_after", rep.After.RSS),
		zap.Duration("duration", rep.Duration))
	return rep, runErr
}

func (r *Runner) round(rng *rand.Rand, hold int, rep *Report) error {
	batch := make([]held, 0, hold*len(r.Keys))
	for _, key := range r.Keys {
		n := 1 + rng.Intn(hold)
		for j := 0; j < n; j++ {
			obj, err := r.borrow(key, rep)
			if err != nil {
				return err
			}
			use(obj, j)
			batch = append(batch, held{obj: obj, key: key})
		}
	}

	rng.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
	for _, h := range batch {
		if err := r.Pool.Return(h.obj); err != nil {
			return err
		}
		rep.Returns++
	}

	last := batch[len(batch)-1]
	again, err := r.borrow(last.key, rep)
	if err != nil {
		return err
	}
	if again != last.obj {
		return errors.New(errors.ErrorTypeInternal, "pool did not hand back the most recently returned instance").
			WithDetail("key", last.key).
			WithDetail("want_id", last.obj.ID).
			WithDetail("got_id", again.ID)
	}
	if err := r.Pool.Return(again); err != nil {
		return err
	}
	rep.Returns++
	return nil
}

// borrow borrows an instance of key and checks that the pool tracks it as
// an active instance of key.
func (r *Runner) borrow(key string, rep *Report) (*prototypes.Object, error) {
	obj, err := r.Pool.Borrow(key)
	if err != nil {
		return nil, err
	}
	rep.Borrows++
	if !obj.Active() {
		return nil, errors.New(errors.ErrorTypeInternal, "borrowed instance is not active").WithDetail("key", key)
	}
	if got, ok := r.Pool.KeyOf(obj); !ok || got != key {
		return nil, errors.New(errors.ErrorTypeInternal, "borrowed instance not tracked under its key").
			WithDetail("key", key).
			WithDetail("tracked_key", got)
	}
	return obj, nil
}

// use writes into obj the way a caller would.
func use(obj *prototypes.Object, n int) {
	if obj.Buffer != nil {
		obj.Buffer = append(obj.Buffer, byte(n))
	}
	if obj.Fields != nil {
		obj.Fields["n"] = n
	}
}
