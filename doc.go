// Package stockpile is a keyed object pool for Go.
//
// Instances are spawned from prototypes registered under string keys. A
// borrowed instance comes from the most recently returned idle instance of
// its key when there is one, and is spawned from the key's prototype
// otherwise. The pool remembers which key each borrowed instance belongs to,
// so returning it needs nothing but the instance.
//
// # Packages
//
//   - pkg/pool: the pool itself (registry, recycle store, active ledger)
//   - pkg/catalog: category trees of prototypes, sorted and flattened into a
//     pool manifest
//   - pkg/prototypes: a ready-made instance type and the library that maps
//     configuration entries to prototypes
//   - pkg/config: YAML configuration with environment overrides
//   - pkg/metrics, pkg/observability: Prometheus metrics and OpenTelemetry
//     tracing
//   - cmd/stockpile: the CLI (validate, sort, soak)
//
// # Quick Start
//
//	proto := pool.NewPrototype("bullet", func() *Bullet { return &Bullet{} })
//	p := pool.New[*Bullet]()
//	if err := p.Configure(pool.NewManifest(pool.Binding[*Bullet]{Key: "bullet", Prototype: proto})); err != nil {
//	    log.Fatal(err)
//	}
//	_ = p.Prewarm(32)
//
//	b, err := p.Borrow("bullet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Return(b)
//
// # Errors
//
// Every failure is a *errors.Error from pkg/errors with a type: config for
// a pool that cannot be configured or prewarmed, lookup for an unknown key
// or an instance the pool is not tracking, return for a return the pool
// cannot accept. Inconsistencies the pool can recover from (a key
// registered twice, an instance returned twice) are logged as warnings and
// do not fail the call.
package stockpile
