package builtin

import (
	"webshell/internal/editor"
	"webshell/internal/process"
)

// newVi opens the modal editor on argv[1] (or a new, unnamed buffer
// saved to "untitled" if no path is given).
func newVi(parent process.Process, argv []string, svc Services) process.Process {
	path := "untitled"
	if len(argv) >= 2 {
		path = argv[1]
	}
	return editor.New(parent, svc.Storage, path)
}
