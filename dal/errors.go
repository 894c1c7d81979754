// Package dal gives typed, reference-counted access to the groups and
// datasets of LOFAR HDF5 files.
//
// Engine handles are owned through guards: HID shares a handle and closes
// it when the last guard is closed, TempHID owns short-lived dataspaces and
// property lists. Group and Dataset nodes open their handle lazily below a
// Parent, which is a File or another Group.
//
//	f, err := dal.OpenFile("obs.h5", dal.Create)
//	...
//	ds := dal.NewDataset[float32](f, "BEAM_000")
//	err = ds.Create([]int64{128, 16}, []int64{-1, 16}, "BEAM_000.raw", dal.Native)
//	...
//	err = ds.SetMatrix([]uint64{0, 0}, []uint64{128, 16}, samples)
package dal

import "errors"

// Error is the error returned by every dal operation. Desc says which
// operation failed; Err is the underlying cause, if any.
type Error struct {
	Desc string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Desc
	}
	return e.Desc + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(desc string, err error) error {
	return &Error{Desc: desc, Err: err}
}

// Common causes
var (
	ErrInvalidHandle     = errors.New("invalid handle")
	ErrRankMismatch      = errors.New("rank mismatch")
	ErrUnboundedInternal = errors.New("unbounded dimension requires an external file")
	ErrResizeInternal    = errors.New("resize requires external files")
	ErrUnsupportedType   = errors.New("unsupported element type")
	ErrBufferTooSmall    = errors.New("buffer too small")
	ErrNotSupported      = errors.New("operation not supported")
)
