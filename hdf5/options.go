package hdf5

// FileOption configures file creation and opening.
type FileOption func(*fileOptions)

type fileOptions struct {
	offsetSize int
	lengthSize int
	locking    bool
}

func defaultFileOptions() *fileOptions {
	return &fileOptions{
		offsetSize: 8,
		lengthSize: 8,
		locking:    true,
	}
}

// WithOffsetSize sets the size in bytes for file offsets (2, 4, or 8).
// It only affects new files.
func WithOffsetSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.offsetSize = size
		}
	}
}

// WithLengthSize sets the size in bytes for lengths (2, 4, or 8).
// It only affects new files.
func WithLengthSize(size int) FileOption {
	return func(o *fileOptions) {
		if size == 2 || size == 4 || size == 8 {
			o.lengthSize = size
		}
	}
}

// WithoutLocking disables the advisory file lock.
func WithoutLocking() FileOption {
	return func(o *fileOptions) {
		o.locking = false
	}
}

// WithLocking sets whether files are locked while open.
func WithLocking(on bool) FileOption {
	return func(o *fileOptions) {
		o.locking = on
	}
}
