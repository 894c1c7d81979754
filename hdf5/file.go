package hdf5

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robert-malhotra/go-dal/internal/alloc"
	"github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/flock"
	"github.com/robert-malhotra/go-dal/internal/object"
	"github.com/robert-malhotra/go-dal/internal/superblock"
)

// AccessMode selects how OpenFile opens a file.
type AccessMode int

const (
	ReadOnly AccessMode = iota
	ReadWrite
)

// file is one open HDF5 file. It stays open while a file ID or any object
// ID inside it is open.
type file struct {
	path     string
	osf      *os.File
	io       baseIO
	sb       *superblock.Superblock
	cfg      binary.Config
	reader   *binary.Reader
	alloc    *alloc.Allocator
	writable bool
	locked   bool

	fileIDs  int
	objects  int
	datasets map[string]*datasetState
}

// openFiles maps absolute paths to open files.
var openFiles = make(map[string]*file)

// baseIO shifts addresses by the superblock base address.
type baseIO struct {
	f    *os.File
	base int64
}

func (b baseIO) ReadAt(p []byte, off int64) (int, error)  { return b.f.ReadAt(p, off+b.base) }
func (b baseIO) WriteAt(p []byte, off int64) (int, error) { return b.f.WriteAt(p, off+b.base) }

// fileID is the object behind a file ID.
type fileID struct{ f *file }

func (h *fileID) release() error {
	h.f.fileIDs--
	return h.f.maybeClose()
}

func newFile(path string, osf *os.File, sb *superblock.Superblock, writable bool) *file {
	cfg := sb.Config()
	f := &file{
		path:     path,
		osf:      osf,
		io:       baseIO{f: osf, base: int64(sb.BaseAddress)},
		sb:       sb,
		cfg:      cfg,
		writable: writable,
		datasets: make(map[string]*datasetState),
	}
	f.reader = binary.NewReader(f.io, cfg)
	if writable {
		f.alloc = alloc.New(sb.EOFAddress)
	}
	return f
}

func lockFile(osf *os.File, exclusive bool, o *fileOptions) (bool, error) {
	if !o.locking {
		return false, nil
	}
	if err := flock.Lock(osf, exclusive); err != nil {
		return false, err
	}
	return true, nil
}

// CreateFile creates a new file, truncating any existing one, and returns a
// file ID open for writing.
func CreateFile(path string, opts ...FileOption) (ID, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()

	if _, ok := openFiles[abs]; ok {
		return 0, fmt.Errorf("creating %s: %w: file is open", path, ErrLocked)
	}
	osf, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	locked, err := lockFile(osf, true, options)
	if err != nil {
		osf.Close()
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := osf.Truncate(0); err != nil {
		osf.Close()
		return 0, fmt.Errorf("creating file: %w", err)
	}

	sb := superblock.New(options.offsetSize, options.lengthSize)
	f := newFile(abs, osf, sb, true)
	f.locked = locked
	f.alloc = alloc.New(uint64(sb.Size()))

	root, err := object.Encode(f.cfg, object.NewGroupMessages(), object.MinGroupChunkSize)
	if err == nil {
		sb.RootGroupAddress = f.alloc.AllocTagged(uint64(len(root)), "root group")
		err = f.writeAt(root, sb.RootGroupAddress)
	}
	if err == nil {
		err = f.flush()
	}
	if err != nil {
		f.close()
		os.Remove(abs)
		return 0, fmt.Errorf("creating file: %w", err)
	}

	openFiles[abs] = f
	f.fileIDs++
	log().Debug("hdf5: file created", "path", abs, "offset_size", options.offsetSize, "length_size", options.lengthSize)
	return register(TypeFile, &fileID{f: f}), nil
}

// OpenFile opens an existing file. A file already open in this process is
// shared; asking for write access to a file open read-only fails.
func OpenFile(path string, mode AccessMode, opts ...FileOption) (ID, error) {
	options := defaultFileOptions()
	for _, opt := range opts {
		opt(options)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()

	if f, ok := openFiles[abs]; ok {
		if mode == ReadWrite && !f.writable {
			return 0, fmt.Errorf("opening %s for writing: %w: file is open read-only", path, ErrLocked)
		}
		f.fileIDs++
		return register(TypeFile, &fileID{f: f}), nil
	}

	flag := os.O_RDONLY
	if mode == ReadWrite {
		flag = os.O_RDWR
	}
	osf, err := os.OpenFile(abs, flag, 0)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	locked, err := lockFile(osf, mode == ReadWrite, options)
	if err != nil {
		osf.Close()
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	sb, err := superblock.Read(osf)
	if err != nil {
		if locked {
			flock.Unlock(osf)
		}
		osf.Close()
		return 0, fmt.Errorf("reading superblock: %w", err)
	}

	f := newFile(abs, osf, sb, mode == ReadWrite)
	f.locked = locked
	if _, err := object.Read(f.reader, sb.RootGroupAddress); err != nil {
		f.close()
		return 0, fmt.Errorf("opening root group: %w", err)
	}

	openFiles[abs] = f
	f.fileIDs++
	log().Debug("hdf5: file opened", "path", abs, "writable", f.writable)
	return register(TypeFile, &fileID{f: f}), nil
}

// CloseFile releases a file ID. The file itself closes once no object
// inside it is open either.
func CloseFile(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := decRef(id, TypeFile)
	return err
}

// FlushFile writes the superblock and syncs the file to disk.
func FlushFile(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	f, _, err := locate(id)
	if err != nil {
		return err
	}
	return f.flush()
}

// FileName returns the absolute path of the file holding id.
func FileName(id ID) (string, error) {
	mu.Lock()
	defer mu.Unlock()
	f, _, err := locate(id)
	if err != nil {
		return "", err
	}
	return f.path, nil
}

// locate returns the file and object path of a file, group or dataset ID.
func locate(id ID) (*file, string, error) {
	e, err := lookup(id, TypeBad)
	if err != nil {
		return nil, "", err
	}
	switch obj := e.obj.(type) {
	case *fileID:
		return obj.f, "/", nil
	case *group:
		return obj.f, obj.path, nil
	case *dataset:
		return obj.f, obj.st.path, nil
	}
	return nil, "", fmt.Errorf("%w: %d is a %s", ErrWrongType, id, e.typ)
}

func (f *file) writeAt(p []byte, addr uint64) error {
	if !f.writable {
		return ErrReadOnly
	}
	_, err := f.io.WriteAt(p, int64(addr))
	return err
}

// flush updates the end-of-file address and syncs. The file is extended to
// that address so the space of unwritten datasets exists on disk.
func (f *file) flush() error {
	if !f.writable {
		return nil
	}
	f.sb.EOFAddress = f.alloc.EOFAddr()
	info, err := f.osf.Stat()
	if err != nil {
		return err
	}
	if end := int64(f.sb.BaseAddress + f.sb.EOFAddress); info.Size() < end {
		if err := f.osf.Truncate(end); err != nil {
			return fmt.Errorf("extending file: %w", err)
		}
	}
	if err := f.sb.Write(f.osf); err != nil {
		return fmt.Errorf("writing superblock: %w", err)
	}
	return f.osf.Sync()
}

func (f *file) maybeClose() error {
	if f.fileIDs > 0 || f.objects > 0 {
		return nil
	}
	delete(openFiles, f.path)
	err := f.flush()
	if err != nil {
		log().Warn("hdf5: flush on close failed", "path", f.path, "err", err)
	}
	if cerr := f.close(); err == nil {
		err = cerr
	}
	log().Debug("hdf5: file closed", "path", f.path)
	return err
}

func (f *file) close() error {
	var errs []error
	for _, st := range f.datasets {
		errs = append(errs, st.storage.Close())
	}
	if f.locked {
		if err := flock.Unlock(f.osf); err != nil {
			log().Warn("hdf5: unlock failed", "path", f.path, "err", err)
		}
	}
	errs = append(errs, f.osf.Close())
	return errors.Join(errs...)
}
