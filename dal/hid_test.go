package dal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-dal/hdf5"
	"github.com/stretchr/testify/require"
)

// engineFile creates a file directly through the engine.
func engineFile(t *testing.T) hdf5.ID {
	t.Helper()
	fid, err := hdf5.CreateFile(filepath.Join(t.TempDir(), "hid.h5"))
	require.NoError(t, err)
	t.Cleanup(func() { hdf5.CloseFile(fid) })
	return fid
}

func countingCloser(n *int) func(hdf5.ID) error {
	return func(id hdf5.ID) error {
		*n++
		return hdf5.CloseGroup(id)
	}
}

func TestHIDCloneKeepsHandleOpen(t *testing.T) {
	require := require.New(t)

	fid := engineFile(t)
	gid, err := hdf5.CreateGroup(fid, "g")
	require.NoError(err)

	var closed int
	h1, err := NewHID(gid, countingCloser(&closed), "could not create group")
	require.NoError(err)
	require.True(h1.IsSet())
	require.Equal(gid, h1.ID())

	h2 := h1.Clone()
	n, _ := hdf5.RefCount(gid)
	require.Equal(3, n)

	require.NoError(h1.Close())
	require.False(h1.IsSet())
	require.True(hdf5.IsValid(gid), "clone must keep the handle open")
	require.Zero(closed)

	require.NoError(h2.Close())
	require.False(hdf5.IsValid(gid))
	require.Equal(1, closed)

	require.NoError(h2.Close(), "second close is a no-op")
	require.Equal(1, closed)
}

func TestNewHIDInvalid(t *testing.T) {
	require := require.New(t)

	_, err := NewHID(0, hdf5.CloseGroup, "could not open group")
	require.ErrorIs(err, ErrInvalidHandle)
	var e *Error
	require.True(errors.As(err, &e))
	require.Equal("could not open group", e.Desc)

	_, err = NewHID(-3, nil, "negative")
	require.ErrorIs(err, ErrInvalidHandle)

	_, err = NewHID(1<<40, nil, "unknown")
	require.ErrorIs(err, hdf5.ErrInvalidID)
}

func TestHIDZeroValue(t *testing.T) {
	require := require.New(t)

	var h HID
	require.False(h.IsSet())
	require.Zero(h.ID())
	require.False(h.Clone().IsSet())
	require.NoError(h.Close())

	// A guard whose handle the engine has dropped.
	stale := HID{id: 1 << 40}
	require.False(stale.Clone().IsSet())
	_, err := share(stale, "stale")
	require.ErrorIs(err, ErrInvalidHandle)
}

func TestHIDAssign(t *testing.T) {
	require := require.New(t)

	fid := engineFile(t)
	a, err := hdf5.CreateGroup(fid, "a")
	require.NoError(err)
	b, err := hdf5.CreateGroup(fid, "b")
	require.NoError(err)

	ha, err := NewHID(a, hdf5.CloseGroup, "a")
	require.NoError(err)
	hb, err := NewHID(b, hdf5.CloseGroup, "b")
	require.NoError(err)
	defer hb.Close()

	require.NoError(ha.Assign(ha))
	n, _ := hdf5.RefCount(a)
	require.Equal(2, n, "self assignment leaves the count alone")

	require.NoError(ha.Assign(hb))
	require.False(hdf5.IsValid(a), "old handle released")
	require.Equal(b, ha.ID())
	n, _ = hdf5.RefCount(b)
	require.Equal(3, n)

	require.NoError(ha.Close())
	require.True(hdf5.IsValid(b))
}

func TestTempHID(t *testing.T) {
	require := require.New(t)

	sid, err := hdf5.CreateSimple([]uint64{4}, nil)
	require.NoError(err)
	tmp, err := NewTempHID(sid, hdf5.CloseDataspace, "could not create simple dataspace")
	require.NoError(err)
	require.True(tmp.IsSet())
	n, _ := hdf5.RefCount(sid)
	require.Equal(1, n, "no reference is taken")

	require.NoError(tmp.Close())
	require.False(hdf5.IsValid(sid))
	require.NoError(tmp.Close())

	_, err = NewTempHID(0, hdf5.CloseDataspace, "bad")
	require.ErrorIs(err, ErrInvalidHandle)
}

func TestErrorMessage(t *testing.T) {
	require := require.New(t)

	err := newError("could not create dataset", hdf5.ErrExists)
	require.Equal("could not create dataset: object already exists", err.Error())
	require.ErrorIs(err, hdf5.ErrExists)
	require.Equal("plain", (&Error{Desc: "plain"}).Error())
}
