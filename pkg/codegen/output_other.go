//go:build !linux

package codegen

import "os"

// syncFile falls back to the portable os.File.Sync on non-Linux targets.
func syncFile(f *os.File) error {
	return f.Sync()
}
