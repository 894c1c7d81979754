package hdf5

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-dal/internal/message"
	"github.com/robert-malhotra/go-dal/internal/object"
)

// group is the object behind a group ID.
type group struct {
	f    *file
	path string
}

func (g *group) release() error {
	g.f.objects--
	return g.f.maybeClose()
}

// joinPath resolves name against the object path base.
func joinPath(base, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.HasPrefix(name, "/") {
		return path.Clean(name), nil
	}
	return path.Join(base, name), nil
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// resolve returns the object header at the absolute path p.
func (f *file) resolve(p string) (*object.Header, error) {
	hdr, err := object.Read(f.reader, f.sb.RootGroupAddress)
	if err != nil {
		return nil, fmt.Errorf("reading root group: %w", err)
	}
	walked := "/"
	for _, name := range splitPath(p) {
		if hdr.IsDataset() {
			return nil, fmt.Errorf("%w: %s is a dataset", ErrNotFound, walked)
		}
		link := findLink(hdr, name)
		if link == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path.Join(walked, name))
		}
		if !link.IsHard() {
			return nil, fmt.Errorf("%w: %s is a soft or external link", ErrUnsupported, path.Join(walked, name))
		}
		walked = path.Join(walked, name)
		if hdr, err = object.Read(f.reader, link.ObjectAddress); err != nil {
			return nil, fmt.Errorf("reading %s: %w", walked, err)
		}
	}
	return hdr, nil
}

func findLink(hdr *object.Header, name string) *message.Link {
	for _, l := range hdr.Links() {
		if l.Name == name {
			return l
		}
	}
	return nil
}

func (f *file) exists(p string) (bool, error) {
	_, err := f.resolve(p)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// rewrite stores msgs as the header of the object at p. The header is
// rewritten in place when the messages fit, otherwise it moves and the
// link pointing at it is updated.
func (f *file) rewrite(p string, hdr *object.Header, msgs []message.Message) (*object.Header, error) {
	raw, err := object.EncodeSized(f.cfg, msgs, hdr.Size)
	if err == nil {
		if err := f.writeAt(raw, hdr.Address); err != nil {
			return nil, err
		}
		return &object.Header{Address: hdr.Address, Size: hdr.Size, Messages: msgs}, nil
	}
	if !errors.Is(err, object.ErrDoesNotFit) {
		return nil, err
	}

	raw, err = object.Encode(f.cfg, msgs, 2*hdr.Size)
	if err != nil {
		return nil, err
	}
	addr := f.alloc.AllocTagged(uint64(len(raw)), "object header")
	if err := f.writeAt(raw, addr); err != nil {
		return nil, err
	}
	if err := f.relink(p, addr); err != nil {
		return nil, err
	}
	f.alloc.Free(hdr.Address, uint64(hdr.Size))
	log().Debug("hdf5: object header moved", "path", p, "from", hdr.Address, "to", addr, "size", len(raw))
	return &object.Header{Address: addr, Size: len(raw), Messages: msgs}, nil
}

// relink points the link to p at addr.
func (f *file) relink(p string, addr uint64) error {
	if p == "/" {
		f.sb.RootGroupAddress = addr
		return f.sb.Write(f.osf)
	}
	parent := path.Dir(p)
	hdr, err := f.resolve(parent)
	if err != nil {
		return err
	}
	link := findLink(hdr, path.Base(p))
	if link == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	link.ObjectAddress = addr
	_, err = f.rewrite(parent, hdr, hdr.Messages)
	return err
}

// addLink links the object at addr into the group at parent.
func (f *file) addLink(parent, name string, addr uint64) error {
	hdr, err := f.resolve(parent)
	if err != nil {
		return err
	}
	if hdr.IsDataset() {
		return fmt.Errorf("%w: %s is a dataset", ErrWrongType, parent)
	}
	li := hdr.LinkInfo()
	if li == nil || li.Dense {
		return fmt.Errorf("%w: group %s does not use compact link storage", ErrUnsupported, parent)
	}
	if findLink(hdr, name) != nil {
		return fmt.Errorf("%w: %s", ErrExists, path.Join(parent, name))
	}

	link := message.NewHardLink(name, addr)
	if li.TrackOrder {
		next := uint64(0)
		for _, l := range hdr.Links() {
			if l.HasOrder {
				next = max(next, l.CreationOrder+1)
			}
		}
		link.CreationOrder, link.HasOrder = next, true
		li.MaxCreationIndex = next
	}
	_, err = f.rewrite(parent, hdr, append(slices.Clone(hdr.Messages), link))
	return err
}

// CreateGroup creates the group name under loc.
func CreateGroup(loc ID, name string) (ID, error) {
	mu.Lock()
	defer mu.Unlock()

	f, base, err := locate(loc)
	if err != nil {
		return 0, err
	}
	if !f.writable {
		return 0, ErrReadOnly
	}
	p, err := joinPath(base, name)
	if err != nil {
		return 0, err
	}
	if p == "/" {
		return 0, fmt.Errorf("%w: /", ErrExists)
	}

	raw, err := object.Encode(f.cfg, object.NewGroupMessages(), object.MinGroupChunkSize)
	if err != nil {
		return 0, err
	}
	addr := f.alloc.AllocTagged(uint64(len(raw)), "group header")
	if err := f.writeAt(raw, addr); err != nil {
		return 0, fmt.Errorf("writing group header: %w", err)
	}
	if err := f.addLink(path.Dir(p), path.Base(p), addr); err != nil {
		f.alloc.Free(addr, uint64(len(raw)))
		return 0, fmt.Errorf("creating group %s: %w", p, err)
	}

	f.objects++
	log().Debug("hdf5: group created", "file", f.path, "path", p)
	return register(TypeGroup, &group{f: f, path: p}), nil
}

// OpenGroup opens the group name under loc. "/" opens the root group.
func OpenGroup(loc ID, name string) (ID, error) {
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
	hdr, err := f.resolve(p)
	if err != nil {
		return 0, fmt.Errorf("opening group %s: %w", p, err)
	}
	if hdr.IsDataset() {
		return 0, fmt.Errorf("opening group %s: %w: object is a dataset", p, ErrWrongType)
	}

	f.objects++
	return register(TypeGroup, &group{f: f, path: p}), nil
}

// CloseGroup releases a group ID.
func CloseGroup(id ID) error {
	mu.Lock()
	defer mu.Unlock()
	_, err := decRef(id, TypeGroup)
	return err
}

// LinkExists reports whether name resolves to an object under loc.
func LinkExists(loc ID, name string) (bool, error) {
	mu.Lock()
	defer mu.Unlock()

	f, base, err := locate(loc)
	if err != nil {
		return false, err
	}
	p, err := joinPath(base, name)
	if err != nil {
		return false, err
	}
	return f.exists(p)
}

// Links returns the names of the members of a group in creation order.
func Links(loc ID) ([]string, error) {
	mu.Lock()
	defer mu.Unlock()

	f, p, err := locate(loc)
	if err != nil {
		return nil, err
	}
	hdr, err := f.resolve(p)
	if err != nil {
		return nil, err
	}
	if hdr.IsDataset() {
		return nil, fmt.Errorf("%w: %s is a dataset", ErrWrongType, p)
	}
	links := hdr.Links()
	slices.SortStableFunc(links, func(a, b *message.Link) int {
		switch {
		case !a.HasOrder || !b.HasOrder:
			return 0
		case a.CreationOrder < b.CreationOrder:
			return -1
		case a.CreationOrder > b.CreationOrder:
			return 1
		}
		return 0
	})
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	return names, nil
}

// ObjectPath returns the absolute path of a file, group or dataset ID.
func ObjectPath(id ID) (string, error) {
	mu.Lock()
	defer mu.Unlock()
	_, p, err := locate(id)
	return p, err
}
