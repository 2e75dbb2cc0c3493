// Package view provides output formatting and logging for the solrlint CLI.
//
// Commands render through a Viewer, which wraps a Stream. Results go to the
// stream's Writer in the selected format (human or json); logs go to its
// ErrWriter and are always human readable unless json output is selected.
package view
