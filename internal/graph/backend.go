package graph

import "context"

// Backend persists the durable record text of one graph. Implementations
// replace the stored content as a whole on every Write.
type Backend interface {
	// Read returns the stored record text. When nothing has been stored yet
	// the returned error wraps fs.ErrNotExist.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored record text.
	Write(ctx context.Context, data []byte) error

	// Location describes where the data lives, for logs and diagnostics.
	Location() string
}

// Locker is implemented by backends that can exclude other processes from
// a load-mutate-save span.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}
