// internal/services/executor.go
package services

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/javajoker/imi-ledger/internal/database"
	"github.com/javajoker/imi-ledger/internal/metrics"
)

// Executor serializes every ledger operation. Writes run inside one
// transaction under a single mutex, so each operation observes and
// produces a consistent snapshot. Gateway callbacks re-enter through the
// same executor.
type Executor struct {
	db      *gorm.DB
	metrics *metrics.LedgerMetrics

	mu  sync.Mutex
	now func() time.Time
}

// Tx is the transaction handed to a write operation. Hooks registered with
// AfterCommit run once the transaction commits and the lock is released.
type Tx struct {
	*gorm.DB
	hooks []func(context.Context)
}

func (tx *Tx) AfterCommit(fn func(context.Context)) {
	tx.hooks = append(tx.hooks, fn)
}

func NewExecutor(db *gorm.DB, m *metrics.LedgerMetrics) *Executor {
	return &Executor{
		db:      db,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source. Used by tests to move past deadlines.
func (e *Executor) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

// Now must only be called while an operation is running.
func (e *Executor) Now() time.Time {
	return e.now()
}

// Run executes fn as one all-or-nothing write operation.
func (e *Executor) Run(ctx context.Context, operation string, fn func(tx *Tx) error) error {
	start := time.Now()
	hooks, err := e.run(ctx, fn)
	e.metrics.ObserveOperation(operation, outcome(err), time.Since(start))
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

func (e *Executor) run(ctx context.Context, fn func(tx *Tx) error) ([]func(context.Context), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var hooks []func(context.Context)
	err := database.WithTransaction(e.db.WithContext(ctx), func(db *gorm.DB) error {
		tx := &Tx{DB: db}
		if err := fn(tx); err != nil {
			return err
		}
		hooks = tx.hooks
		return nil
	})
	return hooks, err
}

// View executes a read-only operation against the current snapshot.
func (e *Executor) View(ctx context.Context, fn func(db *gorm.DB) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.db.WithContext(ctx))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
