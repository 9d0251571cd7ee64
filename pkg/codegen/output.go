package codegen

import (
	"bufio"
	"os"
)

// Output is the generator's output stream: a truncating file opened once
// per compilation unit, written through a buffered writer, and flushed and
// synced to disk on Close — spec.md §5's "the output stream must be
// flushed on scope exit" requirement, taken literally.
type Output struct {
	f *os.File
	w *bufio.Writer
}

// NewOutput opens path, truncating any existing content.
func NewOutput(path string) (*Output, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Output{f: f, w: bufio.NewWriter(f)}, nil
}

func (o *Output) Write(p []byte) (int, error) { return o.w.Write(p) }

// Close flushes buffered output, syncs the file descriptor to disk and
// closes the file. The disk-sync step is platform-specific; see
// output_unix.go / output_other.go.
func (o *Output) Close() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := syncFile(o.f); err != nil {
		return err
	}
	return o.f.Close()
}
