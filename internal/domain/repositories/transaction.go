package repositories

import "context"

// TxFn runs within a transaction carried by the context.
type TxFn func(ctx context.Context) error

// TransactionManager is the boundary for the composite mutations
// (reorder, version restore, cascade delete) that must commit or roll
// back as a unit.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
