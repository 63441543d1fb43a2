// Package process implements the runnable-unit state machine that the rest
// of webshell is built on: the lifecycle every process obeys, the stdio
// wiring between pipeline members, and the parent/child ownership tree.
// Every operation here is cooperative and single-threaded — it is called
// from the terminal's read loop and never from a background goroutine
// (see internal/services for the one place background goroutines exist).
package process

import (
	"github.com/google/uuid"

	"webshell/internal/output"
)

// State is a process's position in its monotonic lifecycle.
type State int

const (
	Ready State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Hooks is implemented by every concrete process kind. Base provides
// default implementations of every hook (its OnExecute leaves the process
// Running); concrete kinds embed Base and override the hooks they care
// about.
//
// OnExecute's (code, exit) return realizes §4.1's "if the hook returns a
// number, call exit(that number)": exit=false means the process stays
// Running after Execute (the common case — most processes wait for
// writes or EOF), exit=true means it finishes synchronously and code is
// its exit status.
type Hooks interface {
	OnExecute(args []string) (code int, exit bool)
	OnWrite(v output.Value) bool
	OnEOF()
	OnInterrupt()
	OnReturn(child Process, code int)
}

// InputReceiver is implemented by processes with RawInput=true; the
// terminal forwards raw key events to these instead of assembled lines.
type InputReceiver interface {
	OnInput(ev KeyEvent)
}

// KeyEvent is a single raw keystroke delivered to a RawInput process.
type KeyEvent struct {
	Rune  rune
	Key   SpecialKey
	Ctrl  bool
	Shift bool
}

// SpecialKey names a non-printable key. Zero value means "printable rune".
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyDelete
	KeyTab
	KeyArrowUp
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
)

// Process is the public interface every runnable unit satisfies. Base
// implements it directly; concrete kinds embed *Base, which promotes
// every method below, including the unexported pair at the bottom that
// seals the interface to this package's implementations.
type Process interface {
	Hooks

	ID() uuid.UUID
	JobID() uuid.UUID
	State() State
	Parent() Process
	Children() []Process
	Job() []Process
	SetJob(job []Process)
	Stdin() Process
	SetStdin(p Process)
	Stdout() Process
	SetStdout(p Process)
	Stderr() Process
	SetStderr(p Process)
	Args() []string
	Variables() map[string]string
	SetVariable(name, value string)
	History() []string
	HistoryIndex() int
	SetHistoryIndex(i int)
	AppendHistory(line string)

	InputEnabled() bool
	Echo() bool
	Password() bool
	RawInput() bool
	TTY() bool
	ExitInput() string
	Prompt() string
	InputEnded() bool

	Execute(args []string) bool
	Write(v output.Value) bool
	EOF()
	Interrupt()
	Exit(code int)
	ExitCode() int

	addChild(c Process)
	removeChild(c Process)
}

// Flags bundles the boolean/string attributes of §3 that a concrete kind
// sets at construction time.
type Flags struct {
	InputEnabled bool
	Echo         bool
	Password     bool
	RawInput     bool
	TTY          bool
	ExitInput    string
	Prompt       string
}

// Base implements Process and the default Hooks behavior described in
// §4.1. Concrete kinds embed *Base and override whichever hooks they
// need.
type Base struct {
	id     uuid.UUID
	jobID  uuid.UUID
	state  State
	parent Process
	child  map[uuid.UUID]Process
	job    []Process
	stdin  Process
	stdout Process
	stderr Process
	args   []string
	vars   map[string]string
	hist   []string
	histIx int

	flags Flags

	inputEnded bool
	exitCode   int

	// self lets Base's default hooks and lifecycle methods call back
	// into the embedding process's overrides. Wired by New.
	self Process
}

// New constructs a Base owned by parent (nil for the root terminal) with
// the given flags. self must be the concrete process embedding this Base;
// it is what gets inserted into parent's Children and job arrays and is
// what every hook override fires on.
func New(parent Process, flags Flags, self Process) *Base {
	b := &Base{
		id:    uuid.New(),
		jobID: uuid.New(),
		state: Ready,
		child: make(map[uuid.UUID]Process),
		vars:  snapshotVars(parent),
		flags: flags,
		self:  self,
	}
	b.parent = parent
	return b
}

func snapshotVars(parent Process) map[string]string {
	out := make(map[string]string)
	if parent == nil {
		return out
	}
	for k, v := range parent.Variables() {
		out[k] = v
	}
	return out
}

func (b *Base) ID() uuid.UUID      { return b.id }
func (b *Base) JobID() uuid.UUID   { return b.jobID }
func (b *Base) State() State       { return b.state }
func (b *Base) Parent() Process    { return b.parent }
func (b *Base) Args() []string     { return b.args }
func (b *Base) InputEnded() bool   { return b.inputEnded }
func (b *Base) InputEnabled() bool { return b.flags.InputEnabled }
func (b *Base) Echo() bool         { return b.flags.Echo }
func (b *Base) Password() bool     { return b.flags.Password }
func (b *Base) RawInput() bool     { return b.flags.RawInput }
func (b *Base) TTY() bool          { return b.flags.TTY }
func (b *Base) ExitInput() string  { return b.flags.ExitInput }
func (b *Base) Prompt() string     { return b.flags.Prompt }
func (b *Base) ExitCode() int      { return b.exitCode }

func (b *Base) Children() []Process {
	out := make([]Process, 0, len(b.child))
	for _, c := range b.child {
		out = append(out, c)
	}
	return out
}

// Job returns the ordered pipeline this process belongs to. A lone
// process not yet wired into a pipeline reports itself as its own job.
func (b *Base) Job() []Process {
	if len(b.job) == 0 {
		return []Process{b.self}
	}
	return b.job
}

// SetJob wires this process into a shared pipeline; every member of job
// should receive the same slice (and so the same JobID) from the caller.
func (b *Base) SetJob(job []Process) {
	b.job = job
	if len(job) > 0 {
		b.jobID = job[0].JobID()
	}
}

func (b *Base) Stdin() Process      { return b.stdin }
func (b *Base) SetStdin(p Process)  { b.stdin = p }
func (b *Base) Stdout() Process     { return b.stdout }
func (b *Base) SetStdout(p Process) { b.stdout = p }
func (b *Base) Stderr() Process     { return b.stderr }
func (b *Base) SetStderr(p Process) { b.stderr = p }

func (b *Base) Variables() map[string]string { return b.vars }
func (b *Base) SetVariable(name, value string) {
	b.vars[name] = value
}

func (b *Base) History() []string     { return b.hist }
func (b *Base) HistoryIndex() int     { return b.histIx }
func (b *Base) SetHistoryIndex(i int) { b.histIx = i }

// AppendHistory dedupes against the immediately preceding entry before
// appending, per §4.2's "dedupe-then-append".
func (b *Base) AppendHistory(line string) {
	if len(b.hist) > 0 && b.hist[len(b.hist)-1] == line {
		return
	}
	b.hist = append(b.hist, line)
}

func (b *Base) addChild(c Process)    { b.child[c.ID()] = c }
func (b *Base) removeChild(c Process) { delete(b.child, c.ID()) }

// Execute is valid only from Ready. It claims foreground by pointing
// stdin's stdout at self, registers with the parent, runs OnExecute,
// delivers EOF if the upstream has already terminated, and exits if
// OnExecute requested it.
func (b *Base) Execute(args []string) bool {
	if b.state != Ready {
		return false
	}
	b.state = Running
	b.args = args

	if b.stdin != nil {
		b.stdin.SetStdout(b.self)
	}
	if b.parent != nil {
		b.parent.addChild(b.self)
	}

	code, exit := b.self.OnExecute(args)

	if b.stdin != nil && b.stdin.State() == Terminated {
		b.self.EOF()
	}

	if exit {
		b.self.Exit(code)
	}
	return true
}

func (b *Base) OnExecute(args []string) (int, bool) { return 0, false }

// Write delivers v iff Running and InputEnabled; it returns false
// otherwise so the caller can stop producing (§4.1, Open Question 1).
func (b *Base) Write(v output.Value) bool {
	if b.state != Running || !b.flags.InputEnabled {
		return false
	}
	return b.self.OnWrite(v)
}

func (b *Base) OnWrite(v output.Value) bool { return true }

// EOF is at-most-once; if Running and not yet ended, it marks InputEnded
// and invokes the hook. The default hook behavior exits normally when
// InputEnabled.
func (b *Base) EOF() {
	if b.state != Running || b.inputEnded {
		return
	}
	b.inputEnded = true
	b.self.OnEOF()
}

func (b *Base) OnEOF() {
	if b.flags.InputEnabled {
		b.self.Exit(0)
	}
}

// Interrupt invokes the interrupt hook when Running. The default
// propagates to the parent and exits 130.
func (b *Base) Interrupt() {
	if b.state != Running {
		return
	}
	b.self.OnInterrupt()
}

func (b *Base) OnInterrupt() {
	if b.parent != nil {
		b.parent.Interrupt()
	}
	b.self.Exit(130)
}

func (b *Base) OnReturn(child Process, code int) {}

// Exit transitions Running -> Terminated at most once. It exits children
// depth-first, disables input, flushes EOF downstream, reclaims
// foreground if the whole job has returned, tail-flushes EOF to self if
// the upstream already terminated, and notifies the parent.
func (b *Base) Exit(code int) {
	if b.state != Running {
		return
	}
	b.state = Terminated
	b.exitCode = code
	b.flags.InputEnabled = false

	for _, c := range b.Children() {
		c.Exit(0)
	}

	if b.stdout != nil {
		b.stdout.EOF()
	}
	if b.stderr != nil && b.stderr != b.stdout {
		b.stderr.EOF()
	}

	job := b.Job()
	if jobReturned(job) {
		restoreForeground(job)
	}

	if b.stdin != nil && b.stdin.State() == Terminated {
		b.self.EOF()
	}

	if b.parent != nil {
		b.parent.removeChild(b.self)
		if b.parent.State() == Running {
			b.parent.OnReturn(b.self, code)
		}
	}
}

func jobReturned(job []Process) bool {
	for _, p := range job {
		if p.State() != Terminated {
			return false
		}
	}
	return true
}

// restoreForeground points the job's launcher (job[0]'s Stdin — the
// terminal or shell that started the pipeline) back at itself as its own
// Stdout, reclaiming the foreground slot per invariant 1 of §3. A
// launcher is always willing to reclaim this way: it only relinquished
// foreground by handing Stdout to job[0] in the first place, inside
// job[0]'s own Execute.
func restoreForeground(job []Process) {
	if len(job) == 0 {
		return
	}
	launcher := job[0].Stdin()
	if launcher == nil {
		return
	}
	launcher.SetStdout(launcher)
}
