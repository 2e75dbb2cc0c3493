package view

import (
	"fmt"
	"io"

	"sigs.k8s.io/release-utils/version"
)

// Stream provides basic output operations wrapping an io.Writer.
// ErrWriter receives logs.
type Stream struct {
	Writer    io.Writer
	ErrWriter io.Writer
}

// NewStream creates a Stream writing output and logs to w.
func NewStream(w io.Writer) *Stream {
	return NewStreams(w, w)
}

// NewStreams creates a Stream writing output to out and logs to errOut.
func NewStreams(out, errOut io.Writer) *Stream {
	return &Stream{
		Writer:    out,
		ErrWriter: errOut,
	}
}

// Println writes arguments to the stream with a newline.
func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

// Printf writes formatted output to the stream.
func (s *Stream) Printf(fmtStr string, args ...any) {
	fmt.Fprintf(s.Writer, fmtStr, args...)
}

// PrintVersion writes version information to the stream.
func (s *Stream) PrintVersion() {
	info := version.GetVersionInfo()
	fmt.Fprintf(s.Writer, "solrlint version %s\n", info.GitVersion)
	fmt.Fprintf(s.Writer, "%s\n", info.Platform)
}
