package repositories

import "context"

// UnitOfWork runs a function inside a single database transaction. The
// transaction travels in the context; repositories called with that context
// participate in it automatically. Any error rolls the whole unit back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
