package dal

import (
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-dal/hdf5"
	"github.com/stretchr/testify/require"
)

// checkLeaks fails t if the engine holds a different number of open IDs
// once every other cleanup of t has run.
func checkLeaks(t *testing.T) {
	t.Helper()
	before := hdf5.OpenIDs(hdf5.TypeBad)
	t.Cleanup(func() {
		if after := hdf5.OpenIDs(hdf5.TypeBad); after != before {
			t.Errorf("open IDs: %d before, %d after", before, after)
		}
	})
}

func newFile(t *testing.T, name string, opts ...Option) (*File, string) {
	t.Helper()
	checkLeaks(t)
	path := filepath.Join(t.TempDir(), name)
	f, err := OpenFile(path, Create, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, path
}

func newDataset[T any](t *testing.T, parent Parent, name string, dims, maxdims []int64, filename string, e Endianness) *Dataset[T] {
	t.Helper()
	d := NewDataset[T](parent, name)
	require.NoError(t, d.Create(dims, maxdims, filename, e))
	t.Cleanup(func() { d.Close() })
	return d
}
