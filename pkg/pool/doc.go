// Package pool implements a keyed, prototype-backed object pool. Callers borrow
// instances by category key and return them when done; returned instances are
// recycled instead of spawned again.
//
// Architecture
//
// A Pool[T] is made of four parts that always change together under one lock:
//
//   - Prototype registry: key -> Prototype[T], the spawn source for a key
//   - Recycle store: key -> LIFO bucket of idle instances
//   - Active ledger: instance -> key for every borrowed instance
//   - Controller: Configure, Prewarm, Borrow, Return and ReturnTo
//
// Instance identity is Go equality on T, so T is normally a pointer type. An
// instance is either active (in the ledger), idle (in exactly one bucket) or
// unmanaged. The pool never destroys instances.
//
// Usage Patterns
//
// Configuring from a built manifest:
//
//	p := pool.New[*Enemy](pool.WithName("enemies"), pool.WithLogger(log))
//	m := pool.NewManifest(
//		pool.Binding[*Enemy]{Key: "grunt", Prototype: pool.NewPrototype("grunt", newGrunt)},
//	)
//	if err := p.Configure(m); err != nil {
//		return err
//	}
//	_ = p.Prewarm(8)
//
// Borrowing and returning:
//
//	e, err := p.Borrow("grunt")
//	if err != nil {
//		return err
//	}
//	defer p.Return(e)
//
// Manifests are usually produced by the catalog package, which sorts and
// flattens a category tree and drops invalid entries before the pool sees them.
//
// Failures
//
// Misuse never panics. Configure reports config errors, Borrow and Return
// report lookup errors, ReturnTo reports return errors; every failure is also
// logged at error level. Anomalies the pool tolerates (re-registered key,
// double borrow, double return) are logged as warnings and reported to the
// Observer.
//
// Metrics
//
// Stats exposes per-key idle and active counts plus spawn, hit, miss and
// return totals. An Observer receives the same events as they happen; the
// metrics package provides a Prometheus implementation.
package pool
