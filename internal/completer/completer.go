// Package completer provides tab completion for webshell's command line,
// adapted from the teacher shell's filesystem- and process-aware
// completer: where that one scanned the real current directory and
// /proc for candidates, this one lists paths from internal/services'
// Storage and job ids from the shell's own process tree, since neither a
// real filesystem nor real OS processes exist in this model.
package completer

import (
	"github.com/chzyer/readline"

	"webshell/internal/process"
	"webshell/internal/services"
)

// Completer adapts webshell's storage and job table to the
// readline.AutoCompleter interface, rebuilding its suggestion tree on
// each call to Update (the main loop calls this once per prompt, the way
// the teacher shell refreshed its own completer before every Readline).
type Completer struct {
	storage  *services.Storage
	jobs     func() []process.Process
	readline *readline.PrefixCompleter
}

// New constructs a Completer. jobs returns the shell's currently running
// children, used to complete "kill" against live job ids.
func New(storage *services.Storage, jobs func() []process.Process) *Completer {
	return &Completer{storage: storage, jobs: jobs, readline: readline.NewPrefixCompleter()}
}

// Update rebuilds the completion tree from the current set of stored
// paths and running jobs.
func (c *Completer) Update() {
	res := <-c.storage.List("").Done()
	var paths []readline.PrefixCompleterInterface
	for _, name := range res.Value {
		paths = append(paths, readline.PcItem(name))
	}

	var jobIDs []readline.PrefixCompleterInterface
	if c.jobs != nil {
		for _, p := range c.jobs() {
			jobIDs = append(jobIDs, readline.PcItem(p.JobID().String()[:8]))
		}
	}

	c.readline = readline.NewPrefixCompleter(
		readline.PcItem("cat", paths...),
		readline.PcItem("rm", paths...),
		readline.PcItem("mv", paths...),
		readline.PcItem("tee", paths...),
		readline.PcItem("vi", paths...),
		readline.PcItem("grep", paths...),
		readline.PcItem("head", paths...),
		readline.PcItem("tail", paths...),
		readline.PcItem("ls"),
		readline.PcItem("echo"),
		readline.PcItem("kill", jobIDs...),
	)
}

// Do delegates to the underlying PrefixCompleter, satisfying
// readline.AutoCompleter.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	return c.readline.Do(line, pos)
}
