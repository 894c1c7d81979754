package dal

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/robert-malhotra/go-dal/hdf5"
)

// Endianness selects the byte order of a new dataset.
type Endianness int

const (
	Native Endianness = iota
	Little
	Big
)

func (e Endianness) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	}
	return "native"
}

// ParseEndianness parses "native", "little" or "big".
func ParseEndianness(s string) (Endianness, error) {
	switch strings.ToLower(s) {
	case "", "native":
		return Native, nil
	case "little":
		return Little, nil
	case "big":
		return Big, nil
	}
	return Native, fmt.Errorf("unknown endianness %q", s)
}

// order resolves e to a concrete byte order.
func (e Endianness) order() hdf5.ByteOrder {
	switch e {
	case Little:
		return hdf5.LittleEndian
	case Big:
		return hdf5.BigEndian
	}
	if hostBigEndian() {
		return hdf5.BigEndian
	}
	return hdf5.LittleEndian
}

// hostBigEndian checks the low-order byte of a two-byte 1.
func hostBigEndian() bool {
	var i uint16 = 1
	b := (*[2]byte)(unsafe.Pointer(&i))
	return b[0] != 1
}
