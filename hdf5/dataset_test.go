package hdf5

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestDatasetRoundTrip(t *testing.T) {
	fid, path := createFile(t, "data.h5")
	sid := simpleSpace(t, []uint64{2, 3}, nil)

	did, err := CreateDataset(fid, "matrix", StdI32BE, sid, 0)
	if err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	want := []int32{1, -2, 3, -4, 5, 6}
	if err := Write(did, NativeInt32, All, All, int32Bytes(want...)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	mustClose(t, CloseDataset, did)
	mustClose(t, CloseFile, fid)

	fid, err = OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseFile(fid)
	did, err = OpenDataset(fid, "matrix")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	defer CloseDataset(did)

	ft, err := DatasetType(did)
	if err != nil || ft != StdI32BE {
		t.Errorf("DatasetType = %v, %v", ft, err)
	}
	buf := make([]byte, 24)
	if err := Read(did, NativeInt32, All, All, buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := bytesInt32(buf); !slices.Equal(got, want) {
		t.Errorf("read %v, want %v", got, want)
	}

	// Conversion on read.
	fbuf := make([]byte, 48)
	if err := Read(did, NativeFloat64, All, All, fbuf); err != nil {
		t.Fatal(err)
	}
	if got := bytesFloat64(fbuf); got[1] != -2 || got[5] != 6 {
		t.Errorf("read as float64: %v", got)
	}
	if err := Write(did, NativeInt32, All, All, buf); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestDatasetFileExtended(t *testing.T) {
	fid, path := createFile(t, "extended.h5")
	sid := simpleSpace(t, []uint64{1000}, nil)
	did, err := CreateDataset(fid, "zeros", IEEEF64LE, sid, 0)
	if err != nil {
		t.Fatal(err)
	}
	mustClose(t, CloseDataset, did)
	mustClose(t, CloseFile, fid)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() < 8000 {
		t.Errorf("file is %d bytes, dataset storage not allocated", info.Size())
	}
}

func TestHyperslabAndStrides(t *testing.T) {
	fid, _ := createFile(t, "slab.h5")
	defer CloseFile(fid)
	sid := simpleSpace(t, []uint64{4, 4}, nil)
	did, err := CreateDataset(fid, "grid", NativeInt32, sid, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(did)

	all := make([]int32, 16)
	for i := range all {
		all[i] = int32(i)
	}
	if err := Write(did, NativeInt32, All, All, int32Bytes(all...)); err != nil {
		t.Fatal(err)
	}

	fsp, err := DatasetSpace(did)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataspace(fsp)

	// Column 2 into a dense buffer.
	if err := SelectHyperslab(fsp, []uint64{0, 2}, []uint64{4, 1}); err != nil {
		t.Fatal(err)
	}
	if n, _ := SelectedPoints(fsp); n != 4 {
		t.Errorf("SelectedPoints = %d", n)
	}
	msp, err := CreateMemory([]uint64{4, 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataspace(msp)
	buf := make([]byte, 16)
	if err := Read(did, NativeInt32, msp, fsp, buf); err != nil {
		t.Fatal(err)
	}
	if got := bytesInt32(buf); !slices.Equal(got, []int32{2, 6, 10, 14}) {
		t.Errorf("column = %v", got)
	}

	// Transposed: a 2x2 block written from a column-major buffer.
	if err := SelectHyperslab(fsp, []uint64{1, 1}, []uint64{2, 2}); err != nil {
		t.Fatal(err)
	}
	tsp, err := CreateMemory([]uint64{2, 2}, []uint64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataspace(tsp)
	if err := Write(did, NativeInt32, tsp, fsp, int32Bytes(100, 101, 102, 103)); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 64)
	if err := Read(did, NativeInt32, All, All, out); err != nil {
		t.Fatal(err)
	}
	got := bytesInt32(out)
	if got[5] != 100 || got[6] != 102 || got[9] != 101 || got[10] != 103 {
		t.Errorf("block = %v", got)
	}

	// Selecting outside the extent.
	if err := SelectHyperslab(fsp, []uint64{3, 0}, []uint64{2, 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if err := SelectAll(fsp); err != nil {
		t.Fatal(err)
	}
	if n, _ := SelectedPoints(fsp); n != 16 {
		t.Errorf("SelectedPoints after SelectAll = %d", n)
	}

	// start+count wraps around.
	if err := SelectHyperslab(fsp, []uint64{^uint64(0), 0}, []uint64{2, 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("wrapping selection: expected ErrOutOfBounds, got %v", err)
	}
	if err := SelectHyperslab(fsp, []uint64{0, 0}, []uint64{5, 1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("count beyond extent: expected ErrOutOfBounds, got %v", err)
	}

	// Buffer too small for the memory selection.
	if err := Read(did, NativeInt32, All, All, make([]byte, 8)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds for short buffer, got %v", err)
	}
}

func TestMemorySelectionFromAllFile(t *testing.T) {
	fid, _ := createFile(t, "sel.h5")
	defer CloseFile(fid)
	sid := simpleSpace(t, []uint64{3}, nil)
	did, err := CreateDataset(fid, "v", NativeFloat64, sid, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(did)

	// Memory holds 6 values; write every other one.
	msp, err := CreateMemory([]uint64{3}, []uint64{2})
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataspace(msp)
	if err := Write(did, NativeFloat64, msp, All, float64Bytes(1, -1, 2, -1, 3)); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 24)
	if err := Read(did, NativeFloat64, All, All, buf); err != nil {
		t.Fatal(err)
	}
	if got := bytesFloat64(buf); !slices.Equal(got, []float64{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestCreateDatasetRejectsGrowableInternal(t *testing.T) {
	fid, _ := createFile(t, "grow.h5")
	defer CloseFile(fid)

	for _, maxdims := range [][]uint64{{Unlimited}, {20}} {
		sid := simpleSpace(t, []uint64{10}, maxdims)
		if _, err := CreateDataset(fid, "x", NativeInt32, sid, 0); !errors.Is(err, ErrExtent) {
			t.Errorf("maxdims %v: expected ErrExtent, got %v", maxdims, err)
		}
	}
	if ok, _ := LinkExists(fid, "x"); ok {
		t.Error("failed creation left a link behind")
	}
}

func TestExternalDataset(t *testing.T) {
	fid, path := createFile(t, "ext.h5")
	dir := filepath.Dir(path)

	sid := simpleSpace(t, []uint64{10}, []uint64{Unlimited})
	pid, err := CreateDatasetPlist()
	if err != nil {
		t.Fatal(err)
	}
	defer ClosePlist(pid)
	if err := SetExternal(pid, "ext.dat", 0, UnlimitedSize); err != nil {
		t.Fatal(err)
	}
	did, err := CreateDataset(fid, "beam", IEEEF64BE, sid, pid)
	if err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}

	vals := make([]float64, 10)
	for i := range vals {
		vals[i] = float64(i) * 1.5
	}
	if err := Write(did, NativeFloat64, All, All, float64Bytes(vals...)); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "ext.dat"))
	if err != nil {
		t.Fatalf("external file not written: %v", err)
	}
	if len(raw) != 80 || math.Float64frombits(binary.BigEndian.Uint64(raw[8:])) != 1.5 {
		t.Errorf("external file content: %d bytes", len(raw))
	}

	if err := SetExtent(did, []uint64{20}); err != nil {
		t.Fatalf("SetExtent failed: %v", err)
	}
	mustClose(t, CloseDataset, did)
	mustClose(t, CloseFile, fid)

	fid, err = OpenFile(path, ReadOnly)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseFile(fid)
	did, err = OpenDataset(fid, "beam")
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(did)

	sp, err := DatasetSpace(did)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataspace(sp)
	dims, maxdims, _ := SpaceDims(sp)
	if !slices.Equal(dims, []uint64{20}) || maxdims[0] != Unlimited {
		t.Errorf("dims %v maxdims %v", dims, maxdims)
	}

	dcpl, err := DatasetCreatePlist(did)
	if err != nil {
		t.Fatal(err)
	}
	defer ClosePlist(dcpl)
	if n, _ := ExternalCount(dcpl); n != 1 {
		t.Errorf("ExternalCount = %d", n)
	}
	ext, err := GetExternal(dcpl, 0)
	if err != nil || ext.Name != "ext.dat" || ext.Size != UnlimitedSize {
		t.Errorf("GetExternal = %+v, %v", ext, err)
	}
	if l, _ := GetLayout(dcpl); l != Contiguous {
		t.Errorf("layout = %d", l)
	}

	// The grown part reads as zeros.
	buf := make([]byte, 160)
	if err := Read(did, NativeFloat64, All, All, buf); err != nil {
		t.Fatal(err)
	}
	got := bytesFloat64(buf)
	if got[9] != 13.5 || got[19] != 0 {
		t.Errorf("values = %v", got)
	}
}

func TestSetExtentRules(t *testing.T) {
	fid, _ := createFile(t, "extent.h5")
	defer CloseFile(fid)

	internal, err := CreateDataset(fid, "internal", NativeInt32, simpleSpace(t, []uint64{4}, nil), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(internal)
	if err := SetExtent(internal, []uint64{2}); !errors.Is(err, ErrExtent) {
		t.Errorf("internal: expected ErrExtent, got %v", err)
	}

	pid, _ := CreateDatasetPlist()
	defer ClosePlist(pid)
	if err := SetExternal(pid, "bounded.raw", 16, 64); err != nil {
		t.Fatal(err)
	}
	bounded, err := CreateDataset(fid, "bounded", NativeInt32, simpleSpace(t, []uint64{4}, []uint64{16}), pid)
	if err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	defer CloseDataset(bounded)
	if err := SetExtent(bounded, []uint64{17}); !errors.Is(err, ErrExtent) {
		t.Errorf("beyond maxdims: expected ErrExtent, got %v", err)
	}
	if err := SetExtent(bounded, []uint64{4, 4}); !errors.Is(err, ErrExtent) {
		t.Errorf("rank change: expected ErrExtent, got %v", err)
	}
	if err := SetExtent(bounded, []uint64{16}); err != nil {
		t.Errorf("grow to maxdims: %v", err)
	}
	// Shrinking sets maxdims explicitly, which grows the dataspace message.
	if err := SetExtent(bounded, []uint64{1}); err != nil {
		t.Errorf("shrink: %v", err)
	}

	// Too small for the maximum extent.
	small, _ := CreateDatasetPlist()
	defer ClosePlist(small)
	SetExternal(small, "small.raw", 0, 8)
	if _, err := CreateDataset(fid, "small", NativeInt32, simpleSpace(t, []uint64{2}, []uint64{4}), small); !errors.Is(err, ErrExtent) {
		t.Errorf("small external storage: expected ErrExtent, got %v", err)
	}
}

func TestSetExternalRules(t *testing.T) {
	pid, err := CreateDatasetPlist()
	if err != nil {
		t.Fatal(err)
	}
	defer ClosePlist(pid)

	if err := SetExternal(pid, strings.Repeat("x", MaxExternalNameLen+1), 0, UnlimitedSize); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("expected ErrNameTooLong, got %v", err)
	}
	if err := SetExternal(pid, strings.Repeat("x", MaxExternalNameLen), 0, 100); err != nil {
		t.Errorf("name at the limit: %v", err)
	}
	if err := SetExternal(pid, "b.raw", 0, UnlimitedSize); err != nil {
		t.Fatal(err)
	}
	if err := SetExternal(pid, "c.raw", 0, 10); !errors.Is(err, ErrExtent) {
		t.Errorf("after unlimited: expected ErrExtent, got %v", err)
	}
	if err := SetLayout(pid, Chunked); !errors.Is(err, ErrUnsupported) {
		t.Errorf("chunked: expected ErrUnsupported, got %v", err)
	}
	if _, err := GetExternal(pid, 5); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestSharedDatasetState(t *testing.T) {
	fid, _ := createFile(t, "shared_ds.h5")
	defer CloseFile(fid)

	pid, _ := CreateDatasetPlist()
	defer ClosePlist(pid)
	SetExternal(pid, "s.raw", 0, UnlimitedSize)
	a, err := CreateDataset(fid, "d", NativeInt32, simpleSpace(t, []uint64{2}, []uint64{Unlimited}), pid)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(a)
	b, err := OpenDataset(fid, "/d")
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(b)

	if err := SetExtent(a, []uint64{5}); err != nil {
		t.Fatal(err)
	}
	sp, _ := DatasetSpace(b)
	defer CloseDataspace(sp)
	if dims, _, _ := SpaceDims(sp); dims[0] != 5 {
		t.Errorf("second ID sees dims %v", dims)
	}
}

func TestArrayDatatype(t *testing.T) {
	fid, _ := createFile(t, "array.h5")
	defer CloseFile(fid)

	did, err := CreateDataset(fid, "coords", ArrayOf(IEEEF32BE, 3), simpleSpace(t, []uint64{2}, nil), 0)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(did)

	in := float64Bytes(1, 2, 3, 4, 5, 6)
	if err := Write(did, ArrayOf(NativeFloat64, 3), All, All, in); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(in))
	if err := Read(did, ArrayOf(NativeFloat64, 3), All, All, out); err != nil {
		t.Fatal(err)
	}
	if got := bytesFloat64(out); !slices.Equal(got, []float64{1, 2, 3, 4, 5, 6}) {
		t.Errorf("got %v", got)
	}
	if dt, _ := DatasetType(did); dt.Len != 3 || dt.Order != BigEndian || dt.Class != Float {
		t.Errorf("DatasetType = %v", dt)
	}
	if err := Read(did, NativeFloat64, All, All, out); err == nil {
		t.Error("expected element count mismatch")
	}
}

func TestCreateDatasetErrors(t *testing.T) {
	fid, _ := createFile(t, "dserr.h5")
	defer CloseFile(fid)
	sid := simpleSpace(t, []uint64{2}, nil)

	did, err := CreateDataset(fid, "d", NativeInt8, sid, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer CloseDataset(did)

	if _, err := CreateDataset(fid, "d", NativeInt8, sid, 0); !errors.Is(err, ErrExists) {
		t.Errorf("expected ErrExists, got %v", err)
	}
	if _, err := CreateDataset(fid, "e", Datatype{Class: Float, Size: 2}, sid, 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
	if _, err := CreateDataset(did, "child", NativeInt8, sid, 0); !errors.Is(err, ErrWrongType) {
		t.Errorf("dataset as parent: expected ErrWrongType, got %v", err)
	}
	if _, err := OpenGroup(fid, "d"); !errors.Is(err, ErrWrongType) {
		t.Errorf("open dataset as group: expected ErrWrongType, got %v", err)
	}
	gid, _ := CreateGroup(fid, "g")
	defer CloseGroup(gid)
	if _, err := OpenDataset(fid, "g"); !errors.Is(err, ErrWrongType) {
		t.Errorf("open group as dataset: expected ErrWrongType, got %v", err)
	}
}
