package builtin

import (
	"fmt"

	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

// newPS lists every process currently running under the same parent as
// ps itself (the shell's job table), replacing the teacher's
// github.com/mitchellh/go-ps sweep of real OS processes attached to the
// controlling terminal — there is no OS process list in this model, but
// the shell's own Children() is its direct equivalent.
func newPS(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewCaller(parent, func(self process.Process) int {
		lines := []output.Value{output.Text(fmt.Sprintf("%-8s %-10s %-4s CMD", "JOB", "STATE", ""))}
		for _, c := range parent.Children() {
			if c.ID() == self.ID() {
				continue
			}
			cmd := ""
			if args := c.Args(); len(args) > 0 {
				cmd = args[0]
			}
			lines = append(lines, output.Text(fmt.Sprintf("%-8s %-10s %-4s %s", shortID(c.JobID().String()), stateName(c), "", cmd)))
		}
		if self.Stdout() != nil {
			self.Stdout().Write(output.Array(lines))
		}
		return 0
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func stateName(p process.Process) string {
	switch p.State() {
	case process.Ready:
		return "ready"
	case process.Running:
		return "running"
	default:
		return "terminated"
	}
}
