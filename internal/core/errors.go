package core

import "fmt"

// ValidationError reports missing or invalid input. The web layer maps
// it to HTTP 400 and the message is safe to show to clients.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a row that does not exist. The web layer maps
// it to HTTP 404.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// StorageError wraps a backend failure (database or object store).
// The web layer maps it to HTTP 500 and passes the message through.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storagef wraps err as a StorageError with an operation label.
func storagef(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}
