// Package hdf5 is a small pure Go HDF5 engine. Files, groups, datasets,
// dataspaces and property lists are addressed through reference-counted
// integer IDs, the way the HDF5 C library hands them out.
package hdf5

import (
	"errors"

	"github.com/robert-malhotra/go-dal/internal/flock"
	"github.com/robert-malhotra/go-dal/internal/superblock"
)

// Common errors
var (
	ErrInvalidID   = errors.New("invalid identifier")
	ErrWrongType   = errors.New("identifier has the wrong type")
	ErrNotFound    = errors.New("object not found")
	ErrExists      = errors.New("object already exists")
	ErrReadOnly    = errors.New("file is not writable")
	ErrClosed      = errors.New("file is closed")
	ErrOutOfBounds = errors.New("selection out of bounds")
	ErrExtent      = errors.New("invalid extent")
	ErrUnsupported = errors.New("unsupported feature")
	ErrNameTooLong = errors.New("name too long")
	ErrInvalidName = errors.New("invalid name")
	ErrNotHDF5     = superblock.ErrNotHDF5
	ErrLocked      = flock.ErrLocked
)
