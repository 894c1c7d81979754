package dal

import "github.com/robert-malhotra/go-dal/hdf5"

// HID is a reference-counted guard around an engine handle. Copies made
// with Clone share the handle; the handle is closed when the last guard
// sharing it is closed. The zero HID is an empty placeholder.
//
// A guard holds one engine reference for itself on top of the reference
// the handle was created with, so closer runs when a guard's release
// leaves only the creation reference.
type HID struct {
	id     hdf5.ID
	closer func(hdf5.ID) error
}

// NewHID guards id, which is released with closer. desc describes the
// operation that produced id and becomes the error when id is not valid.
func NewHID(id hdf5.ID, closer func(hdf5.ID) error, desc string) (HID, error) {
	if id <= 0 {
		return HID{}, newError(desc, ErrInvalidHandle)
	}
	if _, err := hdf5.IncRef(id); err != nil {
		return HID{}, newError(desc, err)
	}
	return HID{id: id, closer: closer}, nil
}

// guard turns the result of an engine call into a guard. On failure a
// handle that was returned anyway is closed.
func guard(id hdf5.ID, err error, closer func(hdf5.ID) error, desc string) (HID, error) {
	if err != nil {
		return HID{}, newError(desc, err)
	}
	h, err := NewHID(id, closer, desc)
	if err != nil && id > 0 && closer != nil {
		closer(id)
	}
	return h, err
}

// share clones h for a caller, failing when the handle is gone.
func share(h HID, what string) (HID, error) {
	c := h.Clone()
	if !c.IsSet() {
		return HID{}, newError("could not share handle of "+what, ErrInvalidHandle)
	}
	return c, nil
}

// ID returns the guarded handle, 0 when unset.
func (h HID) ID() hdf5.ID { return h.id }

// IsSet reports whether h guards a handle.
func (h HID) IsSet() bool { return h.id > 0 }

// Clone returns a new guard sharing h's handle. An unset guard, or one
// whose handle the engine no longer knows, clones to the zero HID.
func (h HID) Clone() HID {
	if !h.IsSet() {
		return HID{}
	}
	if _, err := hdf5.IncRef(h.id); err != nil {
		return HID{}
	}
	return h
}

// Assign makes h share other's handle, releasing the handle h held.
func (h *HID) Assign(other HID) error {
	c := other.Clone()
	old := *h
	*h = c
	return old.Close()
}

// Close releases the guard. Closing an unset guard is a no-op.
func (h *HID) Close() error {
	if !h.IsSet() {
		return nil
	}
	id, closer := h.id, h.closer
	*h = HID{}

	n, err := hdf5.DecRef(id)
	if err != nil {
		return newError("could not release handle", err)
	}
	if n == 1 && closer != nil {
		if err := closer(id); err != nil {
			return newError("could not close handle", err)
		}
	}
	return nil
}

// noCopy makes go vet report copies of the struct that embeds it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// TempHID owns an engine handle without reference counting. It is used for
// dataspaces and property lists that live for one operation and must not
// be copied.
type TempHID struct {
	_      noCopy
	id     hdf5.ID
	closer func(hdf5.ID) error
}

// NewTempHID owns id, which is released with closer.
func NewTempHID(id hdf5.ID, closer func(hdf5.ID) error, desc string) (*TempHID, error) {
	if id <= 0 {
		return nil, newError(desc, ErrInvalidHandle)
	}
	return &TempHID{id: id, closer: closer}, nil
}

func tempGuard(id hdf5.ID, err error, closer func(hdf5.ID) error, desc string) (*TempHID, error) {
	if err != nil {
		return nil, newError(desc, err)
	}
	return NewTempHID(id, closer, desc)
}

// ID returns the owned handle.
func (t *TempHID) ID() hdf5.ID { return t.id }

// IsSet reports whether t owns a handle.
func (t *TempHID) IsSet() bool { return t != nil && t.id > 0 }

// Close releases the handle. Further calls do nothing.
func (t *TempHID) Close() error {
	if !t.IsSet() || t.closer == nil {
		return nil
	}
	closer := t.closer
	t.closer = nil
	if err := closer(t.id); err != nil {
		return newError("could not close handle", err)
	}
	return nil
}
