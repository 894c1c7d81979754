package dal

import (
	"path"

	"github.com/robert-malhotra/go-dal/hdf5"
)

// Parent is a node that can hold groups and datasets. It is implemented
// by File, Group and Dataset.
type Parent interface {
	// Handle returns a new guard sharing the node's handle, opening the
	// node if needed. The caller closes it.
	Handle() (HID, error)
	// Path returns the absolute path of the node.
	Path() string

	// id returns the node's handle, owned by the node.
	id() (hdf5.ID, error)
}

// node opens and creates the engine object behind a Group.
type node interface {
	open(parent hdf5.ID, name string) (HID, error)
	create(parent hdf5.ID, name string) (HID, error)
}

type groupNode struct{}

func (groupNode) open(parent hdf5.ID, name string) (HID, error) {
	id, err := hdf5.OpenGroup(parent, name)
	return guard(id, err, hdf5.CloseGroup, "could not open group")
}

func (groupNode) create(parent hdf5.ID, name string) (HID, error) {
	id, err := hdf5.CreateGroup(parent, name)
	return guard(id, err, hdf5.CloseGroup, "could not create group")
}

// Group is a named node below a parent. Its handle is opened on first use.
type Group struct {
	parent Parent
	name   string
	kind   node
	hid    HID
}

// NewGroup returns the group name below parent without touching the file.
func NewGroup(parent Parent, name string) *Group {
	return &Group{parent: parent, name: name, kind: groupNode{}}
}

// Name returns the name of g within its parent.
func (g *Group) Name() string { return g.name }

// Path returns the absolute path of g.
func (g *Group) Path() string { return path.Join(g.parent.Path(), g.name) }

// Handle returns a new guard sharing g's handle, opening g on first use.
func (g *Group) Handle() (HID, error) {
	if _, err := g.id(); err != nil {
		return HID{}, err
	}
	return share(g.hid, g.Path())
}

func (g *Group) id() (hdf5.ID, error) {
	if !g.hid.IsSet() {
		if err := g.Open(); err != nil {
			return 0, err
		}
	}
	return g.hid.ID(), nil
}

// Exists reports whether g exists in the file.
func (g *Group) Exists() bool {
	pid, err := g.parent.id()
	if err != nil {
		return false
	}
	ok, err := hdf5.LinkExists(pid, g.name)
	return err == nil && ok
}

// Open opens g, releasing a handle opened before.
func (g *Group) Open() error {
	pid, err := g.parent.id()
	if err != nil {
		return err
	}
	h, err := g.kind.open(pid, g.name)
	if err != nil {
		return err
	}
	log().Debug("dal: node opened", "path", g.Path())
	return g.replace(h)
}

// Create creates g in the file and opens it.
func (g *Group) Create() error {
	pid, err := g.parent.id()
	if err != nil {
		return err
	}
	h, err := g.kind.create(pid, g.name)
	if err != nil {
		return err
	}
	log().Debug("dal: node created", "path", g.Path())
	return g.replace(h)
}

// replace makes h the guard of g and releases the previous one.
func (g *Group) replace(h HID) error {
	old := g.hid
	g.hid = h
	return old.Close()
}

// Close releases g's handle. The node can be opened again.
func (g *Group) Close() error {
	return g.hid.Close()
}

// Group returns the child group name of g.
func (g *Group) Group(name string) *Group {
	return NewGroup(g, name)
}

// Members returns the names of g's members in creation order.
func (g *Group) Members() ([]string, error) {
	id, err := g.id()
	if err != nil {
		return nil, err
	}
	names, err := hdf5.Links(id)
	if err != nil {
		return nil, newError("could not list members of "+g.Path(), err)
	}
	return names, nil
}
