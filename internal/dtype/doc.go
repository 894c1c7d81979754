// Package dtype converts raw element data between HDF5 datatypes.
//
// A transfer moves bytes between a file datatype and a memory datatype.
// When both describe the same layout the bytes are copied. When only the
// byte order differs every element is swapped in place. Anything else goes
// through a per-element numeric conversion:
//
//	Source        | Destination | Rule
//	--------------|-------------|-----------------------------------------
//	integer       | integer     | saturates at the destination range
//	float         | integer     | truncates toward zero, saturates, NaN is 0
//	integer/float | float       | nearest representable value
//
// Array datatypes convert through their base type; source and destination
// must hold the same number of base elements.
//
//	err := dtype.Convert(dst, memType, src, fileType, n)
package dtype
