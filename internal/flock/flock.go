// Package flock takes advisory whole-file locks on HDF5 files, shared for
// readers and exclusive for writers, so two processes cannot modify the
// same file at once.
package flock

import "errors"

// ErrLocked is returned when another process holds a conflicting lock.
var ErrLocked = errors.New("file is locked by another process")
