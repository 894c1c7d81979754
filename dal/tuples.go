package dal

// Coordinate3D is a three-dimensional coordinate, stored as a fixed array
// of three numbers.
type Coordinate3D[T float32 | float64 | int32 | int64] struct {
	X, Y, Z T
}
