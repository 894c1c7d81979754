//go:build !unix

package flock

import "os"

// Lock does nothing on this platform.
func Lock(*os.File, bool) error { return nil }

// Unlock does nothing on this platform.
func Unlock(*os.File) error { return nil }
