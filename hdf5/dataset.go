package hdf5

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/heap"
	"github.com/robert-malhotra/go-dal/internal/layout"
	"github.com/robert-malhotra/go-dal/internal/message"
	"github.com/robert-malhotra/go-dal/internal/object"
)

// datasetState is shared by all IDs open on the same dataset.
type datasetState struct {
	path    string
	hdr     *object.Header
	space   *message.Dataspace
	ftype   *message.Datatype
	layout  *message.DataLayout
	efl     *message.ExternalFileList
	names   []string
	storage layout.Storage
	refs    int
}

// dataset is the object behind a dataset ID.
type dataset struct {
	f  *file
	st *datasetState
}

func (d *dataset) release() error {
	var err error
	d.st.refs--
	if d.st.refs == 0 {
		err = d.st.storage.Close()
		delete(d.f.datasets, d.st.path)
	}
	d.f.objects--
	if cerr := d.f.maybeClose(); err == nil {
		err = cerr
	}
	return err
}

// isUnlimited reports whether a stored length is the all-ones sentinel.
func (f *file) isUnlimited(v uint64) bool {
	return v == Unlimited || v == binary.Undefined(f.cfg.LengthSize)
}

func elements(dims []uint64) uint64 {
	n := uint64(1)
	for _, d := range dims {
		n *= d
	}
	return n
}

// checkExternalExtent verifies that external storage of extSize bytes can
// hold maxdims elements of elemSize bytes.
func checkExternalExtent(maxdims []uint64, elemSize int, extSize uint64) error {
	if extSize == UnlimitedSize {
		return nil
	}
	if slices.Contains(maxdims, Unlimited) {
		return fmt.Errorf("%w: unlimited dimension needs an external file of unlimited size", ErrExtent)
	}
	if need := elements(maxdims) * uint64(elemSize); need > extSize {
		return fmt.Errorf("%w: external storage holds %d bytes, maximum extent needs %d", ErrExtent, extSize, need)
	}
	return nil
}

// CreateDataset creates the dataset name under loc with datatype dt and
// the extent of space. dcpl may be 0 for the default contiguous layout.
func CreateDataset(loc ID, name string, dt Datatype, space, dcpl ID) (ID, error) {
	if err := dt.validate(); err != nil {
		return 0, err
	}

	mu.Lock()
	defer mu.Unlock()

	f, base, err := locate(loc)
	if err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, ErrReadOnly
	}
	s, err := getSpace(space)
	if err != nil {
		return 0, err
	}
	pl := &plist{layout: Contiguous}
	if dcpl != 0 {
		if pl, err = getPlist(dcpl); err != nil {
			return 0, err
		}
	}
	p, err := joinPath(base, name)
	if err != nil {
		return 0, err
	}
	if ok, err := f.exists(p); err != nil {
		return 0, err
	} else if ok {
		return 0, fmt.Errorf("%w: %s", ErrExists, p)
	}

	elemSize := dt.ElementSize()
	nbytes := elements(s.dims) * uint64(elemSize)
	if len(pl.external) == 0 {
		if !slices.Equal(s.dims, s.maxdims) {
			return 0, fmt.Errorf("%w: contiguous dataset %s cannot grow without external storage", ErrExtent, p)
		}
	} else if err := checkExternalExtent(s.maxdims, elemSize, pl.externalSize()); err != nil {
		return 0, err
	}

	spaceMsg := message.NewDataspace(slices.Clone(s.dims), nil)
	if !slices.Equal(s.dims, s.maxdims) {
		spaceMsg.MaxDims = slices.Clone(s.maxdims)
	}

	var efl *message.ExternalFileList
	var lay *message.DataLayout
	if len(pl.external) > 0 {
		if efl, err = f.writeExternalList(pl.external); err != nil {
			return 0, err
		}
		lay = message.NewContiguousLayout(binary.Undefined(f.cfg.OffsetSize), nbytes)
	} else {
		addr := binary.Undefined(f.cfg.OffsetSize)
		if nbytes > 0 {
			addr = f.alloc.AllocAligned(nbytes, 8)
		}
		lay = message.NewContiguousLayout(addr, nbytes)
	}

	raw, err := object.Encode(f.cfg, object.NewDatasetMessages(spaceMsg, dt.message(), efl, lay), 0)
	if err != nil {
		return 0, err
	}
	addr := f.alloc.AllocTagged(uint64(len(raw)), "dataset header")
	if err := f.writeAt(raw, addr); err != nil {
		return 0, fmt.Errorf("writing dataset header: %w", err)
	}
	if err := f.addLink(path.Dir(p), path.Base(p), addr); err != nil {
		f.alloc.Free(addr, uint64(len(raw)))
		if efl == nil && nbytes > 0 {
			f.alloc.Free(lay.Address, nbytes)
		}
		return 0, fmt.Errorf("creating dataset %s: %w", p, err)
	}

	st, err := f.openDataset(p)
	if err != nil {
		return 0, err
	}
	log().Debug("hdf5: dataset created", "file", f.path, "path", p, "type", dt.String(),
		"dims", s.dims, "external", len(pl.external))
	return register(TypeDataset, &dataset{f: f, st: st}), nil
}

// writeExternalList stores the external file names in a new local heap and
// returns the matching file list message.
func (f *file) writeExternalList(ext []External) (*message.ExternalFileList, error) {
	h := heap.NewLocalHeap()
	efl := &message.ExternalFileList{}
	for _, e := range ext {
		size := e.Size
		if size == UnlimitedSize {
			size = binary.Undefined(f.cfg.LengthSize)
		}
		efl.Files = append(efl.Files, message.ExternalFile{
			NameOffset: h.Add(e.Name),
			Offset:     uint64(e.Offset),
			Size:       size,
		})
	}
	efl.HeapAddress = f.alloc.AllocTagged(uint64(h.Size(f.cfg)), "external file heap")
	raw, err := h.Encode(f.cfg, efl.HeapAddress)
	if err != nil {
		return nil, err
	}
	if err := f.writeAt(raw, efl.HeapAddress); err != nil {
		return nil, fmt.Errorf("writing external file heap: %w", err)
	}
	return efl, nil
}

// openDataset returns the shared state of the dataset at p, loading it on
// first use.
func (f *file) openDataset(p string) (*datasetState, error) {
	if st, ok := f.datasets[p]; ok {
		st.refs++
		f.objects++
		return st, nil
	}
	hdr, err := f.resolve(p)
	if err != nil {
		return nil, err
	}
	if !hdr.IsDataset() {
		return nil, fmt.Errorf("%w: %s is not a dataset", ErrWrongType, p)
	}
	st := &datasetState{
		path:   p,
		hdr:    hdr,
		space:  hdr.Dataspace(),
		ftype:  hdr.Datatype(),
		layout: hdr.Layout(),
		efl:    hdr.ExternalFiles(),
		refs:   1,
	}
	if st.ftype == nil {
		return nil, fmt.Errorf("%w: dataset %s has no datatype", ErrUnsupported, p)
	}
	if st.efl != nil {
		h, err := heap.ReadLocalHeap(f.reader, st.efl.HeapAddress)
		if err != nil {
			return nil, fmt.Errorf("reading external file names: %w", err)
		}
		for _, ef := range st.efl.Files {
			name, err := h.String(ef.NameOffset)
			if err != nil {
				return nil, fmt.Errorf("reading external file names: %w", err)
			}
			st.names = append(st.names, name)
		}
	}
	if st.storage, err = layout.New(st.layout, st.efl, st.names, filepath.Dir(f.path), f.io); err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", p, err)
	}
	if ext, ok := st.storage.(*layout.External); ok {
		ext.Created = func(created string) {
			log().Debug("hdf5: external file created", "dataset", p, "path", created)
		}
	}
	f.datasets[p] = st
	f.objects++
	return st, nil
}

// OpenDataset opens the dataset name under loc.
func OpenDataset(loc ID, name string) (ID, error) {
	mu.Lock()
	defer mu.Unlock()

	f, base, err := locate(loc)
	if err != nil {
		return 0, err
	}
	p, err := joinPath(base, name)
	if err != nil {
		return 0, err
	}
	st, err := f.openDataset(p)
	if err != nil {
		return 0, fmt.Errorf("opening dataset %s: %w", p, err)
	}
	return register(TypeDataset, &dataset{f: f, st: st}), nil
}

func getDataset(id ID) (*dataset, error) {
	e, err := lookup(id, TypeDataset)
	if err != nil {
		return nil, err
	}
	return e.obj.(*dataset), nil
}

// CloseDataset releases a dataset ID.
func CloseDataset(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := decRef(id, TypeDataset)
	return err
}

// DatasetSpace returns a new dataspace ID with the dataset's extent.
func DatasetSpace(id ID) (ID, error) {
	mu.Lock()
	defer mu.Unlock()

	d, err := getDataset(id)
	if err != nil {
		return 0, err
	}
	sp := d.st.space
	maxdims := slices.Clone(sp.Max())
	for i, m := range maxdims {
		if d.f.isUnlimited(m) {
			maxdims[i] = Unlimited
		}
	}
	s := &dataspace{dims: slices.Clone(sp.Dimensions), maxdims: maxdims, all: true}
	return register(TypeDataspace, s), nil
}

// DatasetCreatePlist returns a new property list ID describing how the
// dataset was created.
func DatasetCreatePlist(id ID) (ID, error) {
	mu.Lock()
	defer mu.Unlock()

	d, err := getDataset(id)
	if err != nil {
		return 0, err
	}
	pl := &plist{layout: layoutOf(d.st.layout.Class)}
	if d.st.efl != nil {
		for i, ef := range d.st.efl.Files {
			size := ef.Size
			if d.f.isUnlimited(size) {
				size = UnlimitedSize
			}
			pl.external = append(pl.external, External{Name: d.st.names[i], Offset: int64(ef.Offset), Size: size})
		}
	}
	return register(TypePlist, pl), nil
}

// DatasetType returns the datatype stored in the file.
func DatasetType(id ID) (Datatype, error) {
	mu.Lock()
	defer mu.Unlock()

	d, err := getDataset(id)
	if err != nil {
		return Datatype{}, err
	}
	return datatypeFromMessage(d.st.ftype)
}

// SetExtent changes the current extent of a dataset. Only datasets stored
// in external files can change extent, within their maximum extent.
func SetExtent(id ID, dims []uint64) error {
	mu.Lock()
	defer mu.Unlock()

	d, err := getDataset(id)
	if err != nil {
		return err
	}
	f, st := d.f, d.st
	if !f.writable {
		return ErrReadOnly
	}
	if st.efl == nil || len(st.efl.Files) == 0 {
		return fmt.Errorf("%w: %s has no external storage", ErrExtent, st.path)
	}
	if len(dims) != st.space.Rank() {
		return fmt.Errorf("%w: rank %d, dataset rank %d", ErrExtent, len(dims), st.space.Rank())
	}
	maxdims := slices.Clone(st.space.Max())
	for i, m := range maxdims {
		if f.isUnlimited(m) {
			maxdims[i] = Unlimited
		}
	}
	if err := checkDims(dims, maxdims); err != nil {
		return err
	}
	elemSize := int(st.ftype.Size)
	var extSize uint64
	for _, ef := range st.efl.Files {
		if f.isUnlimited(ef.Size) {
			extSize = UnlimitedSize
			break
		}
		extSize += ef.Size
	}
	if err := checkExternalExtent(dims, elemSize, extSize); err != nil {
		return err
	}

	space := message.NewDataspace(slices.Clone(dims), nil)
	if !slices.Equal(dims, maxdims) {
		space.MaxDims = maxdims
	}
	lay := message.NewContiguousLayout(st.layout.Address, elements(dims)*uint64(elemSize))

	msgs := make([]message.Message, len(st.hdr.Messages))
	for i, m := range st.hdr.Messages {
		switch m.Type() {
		case message.TypeDataspace:
			msgs[i] = space
		case message.TypeDataLayout:
			msgs[i] = lay
		default:
			msgs[i] = m
		}
	}
	hdr, err := f.rewrite(st.path, st.hdr, msgs)
	if err != nil {
		return fmt.Errorf("resizing %s: %w", st.path, err)
	}
	st.hdr, st.space, st.layout = hdr, space, lay
	log().Debug("hdf5: dataset extent changed", "file", f.path, "path", st.path, "dims", dims)
	return nil
}
