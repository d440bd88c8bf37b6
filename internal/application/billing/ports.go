package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TxManager runs a unit of work in one transaction. Repositories called with
// the context handed to fn take part in it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SequenceReserver hands out candidate sequence numbers per year prefix so
// that concurrent writers do not compute the same candidate. The persisted
// maximum passed as floor is never undercut.
type SequenceReserver interface {
	Reserve(ctx context.Context, yearPrefix string, floor int) (int, error)
}

// Clock returns the current time
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// isDuplicateNumber reports a unique index violation on insert, which means
// another writer took the number between generation and commit
func isDuplicateNumber(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// ScanStorage keeps the scanned, stamped copies of invoices in object storage
type ScanStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}
