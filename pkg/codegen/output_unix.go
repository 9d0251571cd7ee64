//go:build linux

package codegen

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile fsyncs the underlying file descriptor directly, honoring
// spec.md §5's flush-on-scope-exit requirement at the kernel level rather
// than relying only on the buffered writer's Flush.
func syncFile(f *os.File) error {
	return unix.Fsync(int(f.Fd()))
}
