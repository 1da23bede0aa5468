package store

// ConnectionError indicates the store could not be reached or authenticated to.
// It wraps the driver-level cause so callers never deal with raw driver errors.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string { return "connection failed: " + e.Err.Error() }

func (e *ConnectionError) Unwrap() error { return e.Err }

// PersistenceError indicates a repository operation failed after submission,
// either on connection acquisition or on statement execution. Op names the
// failed operation for reporting.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + " failed: " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }
