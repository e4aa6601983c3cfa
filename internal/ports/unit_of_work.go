package ports

import "context"

// Tx is an opaque transaction handle carried through context. The
// infrastructure layer decides the concrete type (here, *gorm.DB).
type Tx interface{}

// UnitOfWork runs fn inside one transaction boundary: an error rolls back,
// nil commits.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}
