package hdf5

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"
)

func createFile(t *testing.T, name string, opts ...FileOption) (ID, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	fid, err := CreateFile(path, opts...)
	if err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}
	return fid, path
}

func mustClose(t *testing.T, close func(ID) error, id ID) {
	t.Helper()
	if err := close(id); err != nil {
		t.Fatalf("close %d failed: %v", id, err)
	}
}

func simpleSpace(t *testing.T, dims, maxdims []uint64) ID {
	t.Helper()
	sid, err := CreateSimple(dims, maxdims)
	if err != nil {
		t.Fatalf("CreateSimple failed: %v", err)
	}
	t.Cleanup(func() { CloseDataspace(sid) })
	return sid
}

func int32Bytes(vals ...int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

func bytesInt32(b []byte) []int32 {
	out := make([]int32, len(b)/4)
	for i := range out {
		out[i] = int32(binary.NativeEndian.Uint32(b[4*i:]))
	}
	return out
}

func float64Bytes(vals ...float64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.NativeEndian.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func bytesFloat64(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.NativeEndian.Uint64(b[8*i:]))
	}
	return out
}
