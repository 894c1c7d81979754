// Package message encodes and decodes the object header messages used by
// groups and datasets.
//
// Supported messages:
//
//   - Dataspace (0x0001): current and maximum dimensions. See [Dataspace].
//   - Link Info (0x0002) and Group Info (0x000A): markers of a link-message
//     group. See [LinkInfo] and [GroupInfo].
//   - Datatype (0x0003): fixed-point, floating-point and array element
//     types. See [Datatype].
//   - Link (0x0006): named link to another object header. See [Link].
//   - External Data Files (0x0007): raw data segments kept outside the
//     HDF5 file. See [ExternalFileList].
//   - Data Layout (0x0008): contiguous or compact storage. See [DataLayout].
//   - Continuation (0x0010): pointer to more header messages.
//
// Any other message is kept as [Unknown] and written back unchanged when a
// header is rewritten.
package message
