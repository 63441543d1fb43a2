// Package shell implements the command interpreter of §4.3: it parses the
// command buffer into pipelines, maintains the job queue, wires and
// launches each pipeline's processes per §3's invariants, and persists
// history. It is grounded on the teacher shell's internal/ebash package
// (Run/boot/runPipeline/runPipe), rebuilt around process.Process pipelines
// instead of os.Pipe and exec.Cmd.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"webshell/internal/builtin"
	"webshell/internal/config"
	"webshell/internal/output"
	"webshell/internal/painter"
	"webshell/internal/process"
	"webshell/internal/services"
)

type specialForm func(sh *Shell, args []string) process.Process

// Shell is the command interpreter process: a child of the terminal (or,
// in piped/script mode, of whatever feeds it a stream of command text).
type Shell struct {
	*process.Base

	cfg      *config.Config
	storage  *services.Storage
	timer    *services.Timer
	http     *services.HTTP
	paint    painter.Painter
	errSink  *process.ErrorSink
	dispatch func(func())

	specialForms map[string]specialForm
	histGroup    singleflight.Group

	queue      []Pipeline
	jobRunning bool
	lastCode   int
	scriptMode bool
	pipedMode  bool
	stdinEnded bool
}

// New constructs a Shell parented by upstream (the terminal, or another
// process supplying command text in piped mode). dispatch hands a
// completion closure from a service's background goroutine back to the
// single event-loop goroutine (see cmd/webshell's run loop) — it is how
// an abortable builtin like sleep or curl reports completion without
// ever calling a process method off the main goroutine. The returned
// Shell is Ready; the caller executes it.
func New(upstream process.Process, cfg *config.Config, storage *services.Storage, timer *services.Timer, http *services.HTTP, paint painter.Painter, dispatch func(func())) *Shell {
	sh := &Shell{cfg: cfg, storage: storage, timer: timer, http: http, paint: paint, dispatch: dispatch}
	sh.Base = process.New(upstream, process.Flags{InputEnabled: true}, sh)
	sh.SetStdin(upstream)
	sh.SetStdout(upstream)
	sh.errSink = process.NewErrorSink(upstream, paint.Error)
	sh.registerSpecialForms()
	return sh
}

// LastCode reports the exit status of the most recently completed job,
// used to colour the next prompt (§8 invariant 4).
func (sh *Shell) LastCode() int { return sh.lastCode }

// Prompt overrides Base's static Flags.Prompt with one coloured by the
// previous job's exit status, per invariant 4: red iff that code is
// non-zero.
func (sh *Shell) Prompt() string {
	return sh.paint.Prompt(sh.lastCode, sh.cfg.PromptText)
}

// OnExecute picks a mode per §4.3: script (an explicit path argument),
// interactive (stdin is a TTY), or piped (anything else).
func (sh *Shell) OnExecute(args []string) (int, bool) {
	switch {
	case len(args) > 0:
		sh.scriptMode = true
		return sh.runScript(args[0])
	case sh.Stdin() != nil && sh.Stdin().TTY():
		sh.runInteractiveBoot()
	default:
		sh.pipedMode = true
	}
	return 0, false
}

func (sh *Shell) runScript(path string) (int, bool) {
	res := <-sh.storage.Read(path).Done()
	if res.Err != nil {
		sh.errSink.Write(output.Text(fmt.Sprintf("sh: %s: no such file", path)))
		return 1, true
	}
	sh.enqueue(res.Value)
	sh.launchNext()
	return 0, false
}

func (sh *Shell) runInteractiveBoot() {
	if hist := loadHistory(sh.storage, sh.cfg.HistFile); len(hist) > 0 {
		for _, line := range hist {
			sh.AppendHistory(line)
		}
		sh.SetHistoryIndex(len(hist))
	}
	if res := <-sh.storage.Read(sh.cfg.ProfilePath).Done(); res.Err == nil {
		sh.enqueue(res.Value)
	} else if sh.cfg.Greeting != "" {
		sh.Stdout().Write(output.Text(strings.TrimRight(sh.cfg.Greeting, "\n")))
	}
	sh.launchNext()
}

// OnWrite parses v as more command text, the way a typed line (interactive
// mode) or an upstream producer's output (piped mode) both arrive.
func (sh *Shell) OnWrite(v output.Value) bool {
	sh.enqueue(v.Str())
	if !sh.jobRunning {
		sh.launchNext()
	}
	return true
}

// OnInterrupt overrides Base's default (propagate to parent, then exit):
// a job's Ctrl-C only terminates that job's own members — the terminal
// delivers Interrupt directly to every process in the foreground job, so
// by the time it reaches here as a bubbled-up child interrupt, the shell
// itself must survive it.
func (sh *Shell) OnInterrupt() {}

// OnEOF ends the shell once its queue has drained; a job still in flight
// is allowed to finish first.
func (sh *Shell) OnEOF() {
	sh.stdinEnded = true
	if !sh.jobRunning && len(sh.queue) == 0 {
		sh.Exit(sh.lastCode)
	}
}

// OnReturn implements the job-queue bookkeeping of §4.3: a returning
// stage that is its job's last member sets the shell's return code; once
// every member of the job has returned, foreground is reclaimed and the
// next queued pipeline (if any) is launched.
func (sh *Shell) OnReturn(child process.Process, code int) {
	job := child.Job()
	if len(job) > 0 && job[len(job)-1].ID() == child.ID() {
		sh.lastCode = code
	}
	if !jobReturned(job) {
		return
	}
	sh.jobRunning = false
	if in := sh.Stdin(); in != nil {
		in.SetStdout(sh)
	}
	sh.persistHistory()

	if sh.stdinEnded && len(sh.queue) == 0 {
		sh.Exit(sh.lastCode)
		return
	}
	sh.launchNext()
}

func jobReturned(job []process.Process) bool {
	for _, p := range job {
		if p.State() != process.Terminated {
			return false
		}
	}
	return true
}

func (sh *Shell) enqueue(buf string) {
	pipelines, err := Parse(buf)
	if err != nil {
		sh.lastCode = 1
		sh.errSink.Write(output.Text(err.Error()))
		return
	}
	sh.queue = append(sh.queue, pipelines...)
}

func (sh *Shell) launchNext() {
	if len(sh.queue) == 0 {
		if sh.scriptMode || (sh.pipedMode && sh.stdinEnded) {
			sh.Exit(sh.lastCode)
		}
		return
	}
	p := sh.queue[0]
	sh.queue = sh.queue[1:]
	sh.runPipeline(p)
}

// runPipeline resolves, wires, and launches one pipeline, per §3
// invariant 2 and §4.3's "launch right-to-left".
func (sh *Shell) runPipeline(p Pipeline) {
	vars := sh.Variables()
	argv := make([][]string, len(p))
	stages := make([]process.Process, len(p))

	for i, st := range p {
		tokens := expand(st, vars)
		argv[i] = tokens
		proc, ok := sh.resolve(tokens)
		if !ok {
			sh.lastCode = 127
			sh.errSink.Write(output.Text(commandNotFound(tokens[0])))
			sh.launchNext()
			return
		}
		stages[i] = proc
	}

	job := make([]process.Process, len(stages))
	copy(job, stages)
	for _, s := range stages {
		s.SetJob(job)
		s.SetStderr(sh.errSink)
	}
	stages[0].SetStdin(sh.Stdin())
	for i := 1; i < len(stages); i++ {
		stages[i].SetStdin(stages[i-1])
	}
	stages[len(stages)-1].SetStdout(sh.Stdout())

	sh.jobRunning = true
	for i := len(stages) - 1; i >= 0; i-- {
		stages[i].Execute(argv[i])
	}
}

func (sh *Shell) resolve(tokens []string) (process.Process, bool) {
	name := tokens[0]
	if sf, ok := sh.specialForms[name]; ok {
		return sf(sh, tokens), true
	}
	factory, ok := builtin.Lookup(name)
	if !ok {
		return nil, false
	}
	return factory(sh, tokens, builtin.Services{Storage: sh.storage, Timer: sh.timer, HTTP: sh.http, Dispatch: sh.dispatch}), true
}

// parseExitCode parses the optional argument to the "exit" special form.
func parseExitCode(args []string) (int, error) {
	if len(args) < 2 {
		return 0, nil
	}
	return strconv.Atoi(args[1])
}
