// Package superblock reads and writes the version 2/3 superblock that
// anchors every file this module produces.
//
// The superblock carries the field widths used by all other metadata, the
// logical end of file, and the address of the root group's object header.
// Earlier superblock versions (0 and 1) reference the root group through a
// symbol table and are rejected with [ErrUnsupportedVersion].
//
// Layout (O = offset width):
//
//	0     8  signature 0x89 'H' 'D' 'F' '\r' '\n' 0x1a '\n'
//	8     1  version (2 or 3)
//	9     1  offset width
//	10    1  length width
//	11    1  file consistency flags
//	12    O  base address
//	+O    O  superblock extension address
//	+2O   O  end-of-file address
//	+3O   O  root group object header address
//	+4O   4  lookup3 checksum
package superblock
