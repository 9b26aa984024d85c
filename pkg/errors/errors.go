package errors

import "errors"

// ErrStoreUnavailable the store could not commit (lock contention, serialization
// conflict, lost connection). Nothing was persisted; the caller may retry the
// whole operation.
var ErrStoreUnavailable = errors.New("store unavailable, retry the operation")

// ErrDuplicate a uniqueness constraint rejected the write
var ErrDuplicate = errors.New("duplicate key")
