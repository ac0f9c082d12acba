package repositories

import "context"

// TxFn runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager is the atomic-transaction boundary the engines
// rely on. Each top-level mutating operation opens exactly one boundary
// and performs all its writes inside it, so no reader can observe a
// half-applied reorder or a partial permission fan-out.
type TransactionManager interface {
	// ExecTx executes fn within a transaction, committing on nil and
	// rolling back on error.
	ExecTx(ctx context.Context, fn TxFn) error
}
