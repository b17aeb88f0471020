package ports

import "os/exec"

// EditorOpener hands a vault note to an external editor. The TUI uses it when
// a graph node or search hit is opened.
type EditorOpener interface {
	// OpenFile blocks until the editor started for the note at path exits
	OpenFile(path string) error

	// Command builds the editor process without starting it, so a caller
	// that owns the terminal can run it itself
	Command(path string) (*exec.Cmd, error)
}
