// Package builtin implements the commands of §4.5: small process.Hooks
// implementations (mostly built from internal/adapter's Monitor, Printer,
// and Caller kinds) wired to the async service facades of
// internal/services. It replaces the teacher shell's builtin.Execute
// dispatch, which shelled out to the real cd/pwd/echo/kill/ps via
// os/exec, syscall.Kill, and github.com/mitchellh/go-ps — none of which
// apply to this single-process model, so each command is rebuilt against
// process.Process and the storage/timer/http facades instead, keeping
// the teacher's one-file-per-concern layout and name-dispatch shape.
package builtin

import (
	"webshell/internal/process"
	"webshell/internal/services"
)

// Services bundles the async facades and the event-loop dispatcher a
// command may need. Dispatch hands a completion closure from a service's
// background goroutine back to the single cooperative goroutine; a
// command that only does synchronous, fast, local work (cat, ls, mv, rm)
// does not need it.
type Services struct {
	Storage  *services.Storage
	Timer    *services.Timer
	HTTP     *services.HTTP
	Dispatch func(func())
}

// Factory constructs one instance of a command, parented by parent
// (always the shell), against argv (argv[0] is the command name).
type Factory func(parent process.Process, argv []string, svc Services) process.Process

var registry = map[string]Factory{
	"cat":   newCat,
	"ls":    newLs,
	"mv":    newMv,
	"rm":    newRm,
	"curl":  newCurl,
	"sleep": newSleep,
	"clear": newClear,
	"tee":   newTee,
	"head":  newHead,
	"tail":  newTail,
	"grep":  newGrep,
	"ps":    newPS,
	"vi":    newVi,
	"js":    newJS,
}

// Lookup returns the Factory registered for name, if any.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}
