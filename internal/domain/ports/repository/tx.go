package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Its concrete type is infra-defined
// (pgx.Tx for Postgres); repositories must gracefully accept NoTX and run
// against their own pool.
type Tx interface{}

// NoTX is passed where an operation intentionally runs outside a transaction.
var NoTX interface{}

// TransactionManager executes a function within one database transaction,
// passing the transaction handle via tx. If fn returns an error the whole
// transaction rolls back; otherwise it commits. Settlement relies on this as
// its all-or-nothing boundary, injected-failure included.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
