// Package object reads and writes version 2 object headers ("OHDR").
//
// An object header is the on-disk record of a group or dataset: a prefix,
// a chunk of header messages padded with a NIL message, and a lookup3
// checksum. Messages that do not fit the first chunk may continue in
// "OCHK" blocks, which [Read] follows. Headers are always written as a
// single chunk.
//
// Groups outgrow their header as links are added. [EncodeSized] re-encodes
// a header into exactly the space it already occupies when the messages
// still fit, so callers can rewrite in place and relocate only on growth.
package object
