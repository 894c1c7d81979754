package dal

import (
	"github.com/robert-malhotra/go-dal/hdf5"
)

// Mode selects how OpenFile opens a file.
type Mode int

const (
	// Read opens an existing file read-only.
	Read Mode = iota
	// ReadWrite opens an existing file for writing.
	ReadWrite
	// Create creates a file, truncating an existing one.
	Create
)

func (m Mode) String() string {
	switch m {
	case ReadWrite:
		return "read-write"
	case Create:
		return "create"
	}
	return "read"
}

// File is an open HDF5 file and the root of its node tree.
type File struct {
	name string
	mode Mode
	opts options
	hid  HID
}

// OpenFile opens or creates the file name.
func OpenFile(name string, mode Mode, opts ...Option) (*File, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, newError("invalid option", err)
		}
	}

	var (
		id   hdf5.ID
		err  error
		desc string
	)
	switch mode {
	case Create:
		id, err = hdf5.CreateFile(name, o.fileOpts...)
		desc = "could not create file " + name
	case ReadWrite:
		id, err = hdf5.OpenFile(name, hdf5.ReadWrite, o.fileOpts...)
		desc = "could not open file " + name
	default:
		id, err = hdf5.OpenFile(name, hdf5.ReadOnly, o.fileOpts...)
		desc = "could not open file " + name
	}
	h, err := guard(id, err, hdf5.CloseFile, desc)
	if err != nil {
		return nil, err
	}
	log().Debug("dal: file opened", "name", name, "mode", mode)
	return &File{name: name, mode: mode, opts: o, hid: h}, nil
}

// Name returns the file name f was opened with.
func (f *File) Name() string { return f.name }

// Mode returns the mode f was opened with.
func (f *File) Mode() Mode { return f.mode }

// Path returns "/".
func (f *File) Path() string { return "/" }

// Endianness returns the default byte order configured for f.
func (f *File) Endianness() Endianness { return f.opts.endianness }

// Handle returns a new guard sharing the file handle. The caller closes it.
func (f *File) Handle() (HID, error) {
	if _, err := f.id(); err != nil {
		return HID{}, err
	}
	return share(f.hid, f.name)
}

func (f *File) id() (hdf5.ID, error) {
	if !f.hid.IsSet() {
		return 0, newError("file "+f.name+" is closed", ErrInvalidHandle)
	}
	return f.hid.ID(), nil
}

// Group returns the group name below the root group.
func (f *File) Group(name string) *Group {
	return NewGroup(f, name)
}

// Members returns the names of the root group's members.
func (f *File) Members() ([]string, error) {
	id, err := f.id()
	if err != nil {
		return nil, err
	}
	names, err := hdf5.Links(id)
	if err != nil {
		return nil, newError("could not list members of /", err)
	}
	return names, nil
}

// Flush writes pending metadata to disk.
func (f *File) Flush() error {
	id, err := f.id()
	if err != nil {
		return err
	}
	if err := hdf5.FlushFile(id); err != nil {
		return newError("could not flush file "+f.name, err)
	}
	return nil
}

// Close releases f. The file is closed on disk once every node opened
// inside it is closed too.
func (f *File) Close() error {
	return f.hid.Close()
}
