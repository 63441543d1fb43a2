package shell

import (
	"strings"

	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

// registerSpecialForms wires up the interpreter built-ins that need
// direct access to the shell itself (history, variables, exit status),
// as opposed to internal/builtin's commands, which only need the
// services facades.
func (sh *Shell) registerSpecialForms() {
	sh.specialForms = map[string]specialForm{
		"history": specialHistory,
		"read":    specialRead,
		"echo":    specialEcho,
		"set":     specialSet,
		"exit":    specialExit,
		"kill":    specialKill,
	}
}

// specialHistory prints the shell's own command history, one entry per
// line.
func specialHistory(sh *Shell, args []string) process.Process {
	lines := make([]output.Value, len(sh.History()))
	for i, line := range sh.History() {
		lines[i] = output.Text(line)
	}
	return adapter.NewPrinter(sh, output.Array(lines))
}

// specialRead assigns the first line it receives to a shell variable,
// then exits. "read" with no name argument is a syntax error (code 2).
func specialRead(sh *Shell, args []string) process.Process {
	if len(args) < 2 {
		return adapter.NewCaller(sh, func(process.Process) int {
			sh.errSink.Write(output.Text("sh: read: missing variable name"))
			return 2
		})
	}
	name := args[1]
	return adapter.NewMonitor(sh, func(self process.Process, v output.Value) {
		sh.SetVariable(name, v.Str())
		self.Exit(0)
	}, nil)
}

// specialEcho joins its arguments with a space and writes them, the way
// the teacher shell's echo builtin does.
func specialEcho(sh *Shell, args []string) process.Process {
	text := strings.Join(args[1:], " ")
	return adapter.NewPrinter(sh, output.Text(text))
}

// specialSet assigns shell variable args[1] to the remaining arguments
// joined by spaces, visible to every pipeline launched after it.
func specialSet(sh *Shell, args []string) process.Process {
	return adapter.NewCaller(sh, func(process.Process) int {
		if len(args) < 2 {
			sh.errSink.Write(output.Text("sh: set: missing variable name"))
			return 2
		}
		sh.SetVariable(args[1], strings.Join(args[2:], " "))
		return 0
	})
}

// specialExit ends the shell itself with the given code (default 0), or
// code 2 if the argument fails to parse as an integer.
func specialExit(sh *Shell, args []string) process.Process {
	return adapter.NewCaller(sh, func(process.Process) int {
		code, err := parseExitCode(args)
		if err != nil {
			sh.errSink.Write(output.Text("sh: exit: numeric argument required"))
			code = 2
		}
		sh.Exit(code)
		return code
	})
}

// specialKill interrupts every process belonging to the job whose id
// matches the given prefix, supplementing the teacher's syscall.Kill with
// a job-id lookup appropriate to this in-process model.
func specialKill(sh *Shell, args []string) process.Process {
	return adapter.NewCaller(sh, func(process.Process) int {
		if len(args) < 2 {
			sh.errSink.Write(output.Text("sh: kill: missing job id"))
			return 2
		}
		target := args[1]
		found := false
		for _, c := range sh.Children() {
			if strings.HasPrefix(c.JobID().String(), target) {
				found = true
				for _, p := range c.Job() {
					p.Interrupt()
				}
			}
		}
		if !found {
			sh.errSink.Write(output.Text("sh: kill: no such job: " + target))
			return 1
		}
		return 0
	})
}
