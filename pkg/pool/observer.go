package pool

import "github.com/ajitpratap0/stockpile/pkg/errors"

// Op names a pool operation in failure reports.
type Op string

const (
	OpConfigure Op = "configure"
	OpPrewarm   Op = "prewarm"
	OpBorrow    Op = "borrow"
	OpReturn    Op = "return"
)

// Anomaly names a tolerated inconsistency. Anomalies are logged as warnings
// and never fail the call.
type Anomaly string

const (
	// AnomalyDuplicateKey: a key was registered twice; the last prototype wins.
	AnomalyDuplicateKey Anomaly = "duplicate_key"
	// AnomalyDoubleBorrow: a borrowed instance was already active.
	AnomalyDoubleBorrow Anomaly = "double_borrow"
	// AnomalyDoubleReturn: a returned instance was already idle.
	AnomalyDoubleReturn Anomaly = "double_return"
	// AnomalyKeyMismatch: an instance was returned under a different key than
	// it was borrowed with.
	AnomalyKeyMismatch Anomaly = "key_mismatch"
)

// Observer receives pool events as they happen. Calls are made with the pool
// lock held and must not call back into the pool.
type Observer interface {
	Spawned(key string)
	Borrowed(key string, reused bool)
	Returned(key string)
	Failed(op Op, errType errors.ErrorType)
	Anomaly(kind Anomaly, key string)
	// Levels reports the idle and active counts of key after a change.
	Levels(key string, idle, active int)
}

type nopObserver struct{}

func (nopObserver) Spawned(string) {}
func (nopObserver) Borrowed(string, bool) {}
func (nopObserver) Returned(string) {}
func (nopObserver) Failed(Op, errors.ErrorType) {}
func (nopObserver) Anomaly(Anomaly, string) {}
func (nopObserver) Levels(string, int, int) {}
