package history

import "fmt"

// StorageError is returned when a store backend fails.
type StorageError struct {
	Backend   string // "memory", "sqlite", "sqlite3"
	Operation string // "record", "list", "prune", ...
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// ExportError is returned when runs cannot be written in an export format.
type ExportError struct {
	Format   string
	RunCount int
	Cause    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, run_count=%d]: %v", e.Format, e.RunCount, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
