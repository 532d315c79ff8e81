package pool

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/stockpile/pkg/errors"
	"github.com/ajitpratap0/stockpile/pkg/logger"
)

// Option configures a Pool.
type Option func(*options)

type options struct {
	name               string
	log                *zap.Logger
	observer           Observer
	deactivateOnReturn bool
}

// WithName names the pool in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithObserver sets the event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithDeactivateOnReturn controls whether returned instances that implement
// Activator are switched off. Enabled by default.
func WithDeactivateOnReturn(on bool) Option {
	return func(o *options) { o.deactivateOnReturn = on }
}

// Pool is a keyed object pool. All methods are safe for concurrent use; every
// operation runs under a single lock so the registry, the recycle store and
// the active ledger are always observed in a consistent state.
//
// Instances are tracked by identity, so T should be a pointer type. With an
// interface type such as any, instances whose dynamic type is not comparable
// (slices, maps, funcs) cannot be tracked: Borrow fails with an internal
// error when a prototype spawns one, and Return and ReturnTo reject them.
type Pool[T comparable] struct {
	mu sync.Mutex

	name               string
	log                *zap.Logger
	observer           Observer
	deactivateOnReturn bool
	iface              bool // T is an interface type

	configured bool
	order      []string // registered keys, first registration order
	keys       *keyInterner
	registry   *registry[T]
	store      *store[T]
	ledger     *ledger[T]

	spawned int64
	hits    int64
	misses  int64
	returns int64
}

// New creates an unconfigured pool. Call Configure before borrowing.
func New[T comparable](opts ...Option) *Pool[T] {
	o := options{name: "default", deactivateOnReturn: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get()
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}

	return &Pool[T]{
		name:               o.name,
		log:                o.log.Named("pool").With(zap.String("pool", o.name)),
		observer:           o.observer,
		deactivateOnReturn: o.deactivateOnReturn,
		iface:              reflect.TypeOf((*T)(nil)).Elem().Kind() == reflect.Interface,
		keys:               newKeyInterner(),
		registry:           newRegistry[T](),
		store:              newStore[T](),
		ledger:             newLedger[T](),
	}
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Configure registers every binding of m. It may succeed only once; a second
// call, a nil or unbuilt manifest, an empty manifest or a binding without a
// key or a usable prototype (nil, typed nil, or a FuncPrototype without a
// spawn function) fail with a config error and leave the pool as it was.
func (p *Pool[T]) Configure(m *Manifest[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.configured {
		return p.fail(OpConfigure, errors.New(errors.ErrorTypeConfig, "pool already configured"))
	}
	if !m.Built() {
		return p.fail(OpConfigure, errors.New(errors.ErrorTypeConfig, "pool manifest not built"))
	}
	if m.Len() == 0 {
		return p.fail(OpConfigure, errors.New(errors.ErrorTypeConfig, "empty prototype catalog"))
	}
	for i, b := range m.bindings {
		if b.Key == "" || !usable(b.Prototype) {
			return p.fail(OpConfigure, errors.New(errors.ErrorTypeConfig, "invalid binding in manifest").
				WithDetail("index", i).
				WithDetail("key", b.Key),
				zap.Int("index", i), zap.String("key", b.Key))
		}
	}

	for _, b := range m.bindings {
		p.register(b.Key, b.Prototype)
	}
	p.configured = true

	p.log.Info("pool configured",
		zap.Int("bindings", m.Len()),
		zap.Int("keys", len(p.order)))
	return nil
}

func (p *Pool[T]) register(key string, proto Prototype[T]) {
	key = p.keys.intern(key)
	if p.registry.register(key, proto) {
		p.log.Warn("prototype already registered, overwriting", zap.String("key", key))
		p.observer.Anomaly(AnomalyDuplicateKey, key)
		return
	}
	p.order = append(p.order, key)
	p.store.bucketFor(key)
}

// Prewarm borrows count instances of every registered key and returns them
// straight away, seeding the recycle buckets. Counts below one are a no-op.
func (p *Pool[T]) Prewarm(count int) error {
	if count <= 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.configured {
		return p.fail(OpPrewarm, errors.New(errors.ErrorTypeConfig, "pool not configured"))
	}

	var errs []error
	batch := make([]T, 0, count)
	for _, key := range p.order {
		batch = batch[:0]
		for i := 0; i < count; i++ {
			inst, err := p.borrow(key)
			if err != nil {
				errs = append(errs, err)
				break
			}
			batch = append(batch, inst)
		}
		for _, inst := range batch {
			if err := p.returnTo(inst, key); err != nil {
				errs = append(errs, err)
			}
		}
	}

	p.log.Debug("pool prewarmed",
		zap.Int("count", count),
		zap.Int("keys", len(p.order)),
		zap.Int("idle", p.store.total()))
	return stderrors.Join(errs...)
}

// Borrow hands out an instance for key: the most recently returned idle
// instance if there is one, otherwise a fresh one spawned from the key's
// prototype. An unregistered key fails with a lookup error and changes nothing.
func (p *Pool[T]) Borrow(key string) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.borrow(key)
}

func (p *Pool[T]) borrow(key string) (T, error) {
	var zero T

	inst, reused := p.store.pop(key)
	if reused {
		p.hits++
	} else {
		proto, ok := p.registry.resolve(key)
		if !ok {
			return zero, p.fail(OpBorrow,
				errors.New(errors.ErrorTypeLookup, "prototype not registered").WithDetail("key", key),
				zap.String("key", key))
		}
		inst = proto.Spawn()
		if inst == zero {
			return zero, p.fail(OpBorrow,
				errors.New(errors.ErrorTypeInternal, "prototype spawned a nil instance").WithDetail("key", key),
				zap.String("key", key), zap.String("prototype", proto.Name()))
		}
		if !p.trackable(inst) {
			return zero, p.fail(OpBorrow,
				errors.New(errors.ErrorTypeInternal, "prototype spawned an instance that cannot be tracked").
					WithDetail("key", key).
					WithDetail("type", fmt.Sprintf("%T", inst)),
				zap.String("key", key), zap.String("type", fmt.Sprintf("%T", inst)))
		}
		p.spawned++
		p.misses++
		p.observer.Spawned(key)
	}

	// Registered keys are always interned.
	key, _ = p.keys.lookup(key)
	p.activate(inst, key)

	p.observer.Borrowed(key, reused)
	p.observer.Levels(key, p.store.size(key), p.ledger.count(key))
	return inst, nil
}

func (p *Pool[T]) activate(inst T, key string) {
	if a, ok := any(inst).(Activator); ok {
		a.SetActive(true)
	}
	if p.ledger.record(inst, key) {
		p.log.Warn("instance already active, overwriting ledger entry", zap.String("key", key))
		p.observer.Anomaly(AnomalyDoubleBorrow, key)
	}
}

// Return gives inst back to the bucket of the key it was borrowed under. An
// instance that is not currently borrowed fails with a lookup error and
// changes nothing.
func (p *Pool[T]) Return(inst T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.trackable(inst) {
		return p.untrackable(inst, "")
	}
	key, ok := p.ledger.lookup(inst)
	if !ok {
		return p.fail(OpReturn,
			errors.New(errors.ErrorTypeLookup, "instance not active in pool").
				WithDetail("type", fmt.Sprintf("%T", inst)),
			zap.String("type", fmt.Sprintf("%T", inst)))
	}
	return p.returnTo(inst, key)
}

// ReturnTo puts inst into key's bucket. It fails with a return error when inst
// is the zero value or key has no bucket. Returning an instance that is
// already idle is logged and ignored, so a bucket never holds an instance
// twice.
func (p *Pool[T]) ReturnTo(inst T, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.returnTo(inst, key)
}

func (p *Pool[T]) returnTo(inst T, key string) error {
	var zero T
	if inst == zero {
		return p.fail(OpReturn,
			errors.New(errors.ErrorTypeReturn, "cannot return a nil instance").WithDetail("key", key),
			zap.String("key", key))
	}

	if !p.trackable(inst) {
		return p.untrackable(inst, key)
	}

	canonical, ok := p.keys.lookup(key)
	if !ok || !p.store.has(canonical) {
		return p.fail(OpReturn,
			errors.New(errors.ErrorTypeReturn, "no recycle bucket for key").WithDetail("key", key),
			zap.String("key", key))
	}
	key = canonical

	if idleKey, idle := p.store.holding(inst); idle {
		p.ledger.erase(inst)
		p.log.Warn("instance already idle, ignoring return",
			zap.String("key", key),
			zap.String("idle_key", idleKey))
		p.observer.Anomaly(AnomalyDoubleReturn, key)
		return nil
	}

	borrowedKey, active := p.ledger.lookup(inst)
	if active && borrowedKey != key {
		p.log.Warn("instance returned under a different key",
			zap.String("key", key),
			zap.String("borrowed_key", borrowedKey))
		p.observer.Anomaly(AnomalyKeyMismatch, key)
	}

	p.store.push(key, inst)
	p.ledger.erase(inst)
	if p.deactivateOnReturn {
		if a, ok := any(inst).(Activator); ok {
			a.SetActive(false)
		}
	}
	p.returns++

	p.observer.Returned(key)
	p.observer.Levels(key, p.store.size(key), p.ledger.count(key))
	if active && borrowedKey != key {
		p.observer.Levels(borrowedKey, p.store.size(borrowedKey), p.ledger.count(borrowedKey))
	}
	return nil
}

// trackable reports whether inst can key the ledger and the idle index.
// Only pools over an interface type can hold instances that cannot.
func (p *Pool[T]) trackable(inst T) bool {
	if !p.iface {
		return true
	}
	t := reflect.TypeOf(inst)
	return t == nil || t.Comparable()
}

func (p *Pool[T]) untrackable(inst T, key string) error {
	return p.fail(OpReturn,
		errors.New(errors.ErrorTypeReturn, "instance cannot be tracked").
			WithDetail("key", key).
			WithDetail("type", fmt.Sprintf("%T", inst)),
		zap.String("key", key), zap.String("type", fmt.Sprintf("%T", inst)))
}

// fail logs err at error level, reports it to the observer and returns it.
func (p *Pool[T]) fail(op Op, err *errors.Error, fields ...zap.Field) error {
	fields = append(fields,
		zap.String("op", string(op)),
		zap.String("error_type", string(err.Type)))
	p.log.Error(err.Message, fields...)
	p.observer.Failed(op, err.Type)
	return err
}

// Configured reports whether Configure has succeeded.
func (p *Pool[T]) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configured
}

// Keys returns the registered keys in first registration order.
func (p *Pool[T]) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.order...)
}

// Idle returns the number of idle instances for key.
func (p *Pool[T]) Idle(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.size(key)
}

// Active returns the number of instances currently borrowed under key.
func (p *Pool[T]) Active(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.count(key)
}

// KeyOf returns the key inst is currently borrowed under.
func (p *Pool[T]) KeyOf(inst T) (string, bool) {
	if !p.trackable(inst) {
		return "", false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.lookup(inst)
}

// KeyStats holds the per-key counts reported by Stats.
type KeyStats struct {
	Idle   int `json:"idle"`
	Active int `json:"active"`
}

// Stats is a point-in-time snapshot of a pool.
type Stats struct {
	Name       string              `json:"name"`
	Configured bool                `json:"configured"`
	Keys       int                 `json:"keys"`
	Spawned    int64               `json:"spawned"`
	Hits       int64               `json:"hits"`
	Misses     int64               `json:"misses"`
	Returns    int64               `json:"returns"`
	Idle       int                 `json:"idle"`
	Active     int                 `json:"active"`
	PerKey     map[string]KeyStats `json:"per_key"`
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	perKey := make(map[string]KeyStats, len(p.order))
	for _, key := range p.order {
		perKey[key] = KeyStats{
			Idle:   p.store.size(key),
			Active: p.ledger.count(key),
		}
	}
	return Stats{
		Name:       p.name,
		Configured: p.configured,
		Keys:       p.registry.len(),
		Spawned:    p.spawned,
		Hits:       p.hits,
		Misses:     p.misses,
		Returns:    p.returns,
		Idle:       p.store.total(),
		Active:     p.ledger.len(),
		PerKey:     perKey,
	}
}
