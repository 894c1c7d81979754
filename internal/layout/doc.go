// Package layout maps dataset element bytes onto storage.
//
// Every dataset stores its raw data through a [Storage]: a byte-addressed
// view of the dataset's data, offset 0 being the first byte of the first
// element. Three storages exist:
//
//   - [Compact]: data held in the layout message, read only.
//   - [Contiguous]: one block in the HDF5 file.
//   - [External]: a list of segments in external files named by the
//     External Data Files message. A segment of unlimited size absorbs
//     everything past its start.
//
// Reads beyond the written part of a storage return zeros, the way an
// unwritten HDF5 dataset reads as its fill value.
//
// # Hyperslabs
//
// [Runs] walks a rectangular selection of a row-major dataset and reports
// it as contiguous byte runs. Trailing dimensions that are selected in full
// are merged, so selecting whole rows of a matrix yields one run per block
// of rows rather than one per element.
package layout
