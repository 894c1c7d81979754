package layout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-dal/internal/binary"
	"github.com/robert-malhotra/go-dal/internal/message"
)

func TestCompactRead(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	compact := NewCompact(&message.DataLayout{Class: message.LayoutCompact, CompactData: data})

	if compact.Class() != message.LayoutCompact {
		t.Errorf("expected compact class, got %s", compact.Class())
	}
	p := make([]byte, 4)
	if _, err := compact.ReadAt(p, 2); err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if !bytes.Equal(p, data[2:6]) {
		t.Errorf("data mismatch: got %v", p)
	}
	if _, err := compact.WriteAt(p, 0); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if _, err := compact.ReadAt(p, 6); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestContiguousReadWrite(t *testing.T) {
	file := binary.NewBuffer(0)
	file.WriteAt(make([]byte, 100), 0)

	c := NewContiguous(message.NewContiguousLayout(100, 16), file)
	if _, err := c.WriteAt([]byte{10, 20, 30, 40}, 4); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}

	// The file ends at 108: the rest of the block reads as zeros.
	p := make([]byte, 16)
	if _, err := c.ReadAt(p, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	want := make([]byte, 16)
	copy(want[4:], []byte{10, 20, 30, 40})
	if !bytes.Equal(p, want) {
		t.Errorf("got %v, want %v", p, want)
	}
	if got := file.Bytes()[104:108]; !bytes.Equal(got, []byte{10, 20, 30, 40}) {
		t.Errorf("file bytes = %v", got)
	}

	if _, err := c.WriteAt(make([]byte, 4), 14); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestContiguousUnallocatedReadsZero(t *testing.T) {
	c := NewContiguous(message.NewContiguousLayout(binary.Undefined(8), 8), binary.NewBuffer(0))
	p := []byte{1, 1, 1, 1}
	if _, err := c.ReadAt(p, 0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p, make([]byte, 4)) {
		t.Errorf("got %v", p)
	}
	if _, err := c.WriteAt(p, 0); err == nil {
		t.Error("expected write to unallocated storage to fail")
	}
}

func externalList(sizes ...uint64) *message.ExternalFileList {
	efl := &message.ExternalFileList{HeapAddress: 0}
	for _, s := range sizes {
		efl.Files = append(efl.Files, message.ExternalFile{Size: s})
	}
	return efl
}

func TestExternalUnlimited(t *testing.T) {
	dir := t.TempDir()
	var created []string

	ext, err := NewExternal(externalList(binary.Undefined(8)), []string{"ext.dat"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	ext.Created = func(p string) { created = append(created, p) }
	defer ext.Close()

	// Missing file reads as zeros.
	p := []byte{9, 9, 9, 9}
	if _, err := ext.ReadAt(p, 40); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if !bytes.Equal(p, make([]byte, 4)) {
		t.Errorf("got %v", p)
	}

	if _, err := ext.WriteAt([]byte{1, 2, 3, 4}, 8); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	path := filepath.Join(dir, "ext.dat")
	if len(created) != 1 || created[0] != path {
		t.Errorf("created = %v", created)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4}) {
		t.Errorf("file = %v", raw)
	}

	// Past the end of the file: zeros.
	p = make([]byte, 8)
	if _, err := ext.ReadAt(p, 8); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(p, []byte{1, 2, 3, 4, 0, 0, 0, 0}) {
		t.Errorf("got %v", p)
	}
}

func TestExternalSegments(t *testing.T) {
	dir := t.TempDir()
	efl := externalList(4, 4)
	efl.Files[1].Offset = 2

	ext, err := NewExternal(efl, []string{"a.raw", "b.raw"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer ext.Close()

	if _, err := ext.WriteAt([]byte{1, 2, 3, 4, 5, 6}, 1); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	a, _ := os.ReadFile(filepath.Join(dir, "a.raw"))
	b, _ := os.ReadFile(filepath.Join(dir, "b.raw"))
	if !bytes.Equal(a, []byte{0, 1, 2, 3}) {
		t.Errorf("a.raw = %v", a)
	}
	if !bytes.Equal(b, []byte{0, 0, 4, 5, 6}) {
		t.Errorf("b.raw = %v", b)
	}

	if _, err := ext.WriteAt([]byte{1, 2}, 7); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if segs := ext.Segments(); segs[1].Path != filepath.Join(dir, "b.raw") || segs[1].Offset != 2 {
		t.Errorf("segments = %+v", segs)
	}
}

func TestResolvePath(t *testing.T) {
	if got := ResolvePath("/data", "x.raw"); got != "/data/x.raw" {
		t.Errorf("relative: %s", got)
	}
	if got := ResolvePath("/data", "/abs/x.raw"); got != "/abs/x.raw" {
		t.Errorf("absolute: %s", got)
	}
}

func TestNewPicksStorage(t *testing.T) {
	lay := message.NewContiguousLayout(binary.Undefined(8), 8)
	s, err := New(lay, externalList(binary.Undefined(8)), []string{"x"}, t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*External); !ok {
		t.Errorf("got %T, want *External", s)
	}
	s, err = New(message.NewContiguousLayout(0, 8), nil, nil, "", binary.NewBuffer(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*Contiguous); !ok {
		t.Errorf("got %T, want *Contiguous", s)
	}
	if _, err := New(&message.DataLayout{Class: message.LayoutChunked}, nil, nil, "", nil); err == nil {
		t.Error("expected chunked layout to be rejected")
	}
}

func TestRuns(t *testing.T) {
	type run struct{ off, n uint64 }
	tests := []struct {
		name        string
		dims, start []uint64
		count       []uint64
		want        []run
	}{
		{"scalar element", []uint64{4, 4}, []uint64{1, 2}, []uint64{1, 1}, []run{{24, 4}}},
		{"column", []uint64{3, 4}, []uint64{0, 1}, []uint64{3, 1}, []run{{4, 4}, {20, 4}, {36, 4}}},
		{"full rows merge", []uint64{4, 4}, []uint64{1, 0}, []uint64{2, 4}, []run{{16, 32}}},
		{"sub block", []uint64{2, 3, 4}, []uint64{1, 1, 0}, []uint64{1, 2, 4}, []run{{64, 32}}},
		{"whole array", []uint64{10}, []uint64{0}, []uint64{10}, []run{{0, 40}}},
		{"empty", []uint64{10}, []uint64{3}, []uint64{0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []run
			err := Runs(tt.dims, tt.start, tt.count, 4, func(off, n uint64) error {
				got = append(got, run{off, n})
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("run %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRunsOutOfBounds(t *testing.T) {
	err := Runs([]uint64{4, 4}, []uint64{3, 0}, []uint64{2, 4}, 1, func(uint64, uint64) error { return nil })
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
