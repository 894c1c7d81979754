package hdf5

import (
	"fmt"
	"sync"
)

// ID identifies an open engine object. Valid IDs are positive.
type ID int64

// All stands for "the whole dataset extent" where a dataspace is expected.
const All ID = 0

// IDType is the kind of object an ID refers to.
type IDType int

const (
	TypeBad IDType = iota
	TypeFile
	TypeGroup
	TypeDataset
	TypeDataspace
	TypePlist
)

func (t IDType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeGroup:
		return "group"
	case TypeDataset:
		return "dataset"
	case TypeDataspace:
		return "dataspace"
	case TypePlist:
		return "property list"
	}
	return "bad"
}

// handleObject is anything an ID can point at. release is called once the
// reference count drops to zero.
type handleObject interface {
	release() error
}

type entry struct {
	typ IDType
	ref int
	obj handleObject
}

// mu serializes every engine call. Objects behind IDs share file state, so
// the engine has one lock rather than one per object.
var mu sync.Mutex

var registry = struct {
	next    ID
	entries map[ID]*entry
}{entries: make(map[ID]*entry)}

// register hands out a new ID with a reference count of 1.
func register(typ IDType, obj handleObject) ID {
	registry.next++
	id := registry.next
	registry.entries[id] = &entry{typ: typ, ref: 1, obj: obj}
	return id
}

func lookup(id ID, want IDType) (*entry, error) {
	e, ok := registry.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	if want != TypeBad && e.typ != want {
		return nil, fmt.Errorf("%w: %d is a %s, want %s", ErrWrongType, id, e.typ, want)
	}
	return e, nil
}

func decRef(id ID, want IDType) (int, error) {
	e, err := lookup(id, want)
	if err != nil {
		return 0, err
	}
	e.ref--
	if e.ref > 0 {
		return e.ref, nil
	}
	delete(registry.entries, id)
	if err := e.obj.release(); err != nil {
		return 0, fmt.Errorf("closing %s %d: %w", e.typ, id, err)
	}
	return 0, nil
}

// IncRef increments the reference count of id and returns the new count.
func IncRef(id ID) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	e, err := lookup(id, TypeBad)
	if err != nil {
		return 0, err
	}
	e.ref++
	return e.ref, nil
}

// DecRef decrements the reference count of id and returns the new count.
// At zero the object is closed.
func DecRef(id ID) (int, error) {
	mu.Lock()
	defer mu.Unlock()
	return decRef(id, TypeBad)
}

// RefCount returns the reference count of id.
func RefCount(id ID) (int, error) {
	mu.Lock()
	defer mu.Unlock()

	e, err := lookup(id, TypeBad)
	if err != nil {
		return 0, err
	}
	return e.ref, nil
}

// IsValid reports whether id refers to an open object.
func IsValid(id ID) bool {
	mu.Lock()
	defer mu.Unlock()
	_, ok := registry.entries[id]
	return ok
}

// TypeOf returns the kind of object id refers to, or TypeBad.
func TypeOf(id ID) IDType {
	mu.Lock()
	defer mu.Unlock()
	if e, ok := registry.entries[id]; ok {
		return e.typ
	}
	return TypeBad
}

// OpenIDs returns the number of open IDs of the given type, or of all types
// for TypeBad.
func OpenIDs(typ IDType) int {
	mu.Lock()
	defer mu.Unlock()
	n := 0
	for _, e := range registry.entries {
		if typ == TypeBad || e.typ == typ {
			n++
		}
	}
	return n
}
