// Package adapter provides the three adapter process kinds of §4.6:
// Monitor (callback on each write), Printer (emit a fixed payload and
// exit), and Caller (one-shot effect then exit). They exist so that
// simple built-ins and shell special forms can be written as one-liners
// instead of hand-rolled process.Hooks implementations.
package adapter

import (
	"webshell/internal/output"
	"webshell/internal/process"
)

// Monitor invokes Callback on every write it receives and, on EOF, calls
// EOFCallback if set, otherwise falls through to Base's default EOF
// behavior (exit normally when InputEnabled).
type Monitor struct {
	*process.Base
	Callback    func(self process.Process, v output.Value)
	EOFCallback func(self process.Process)
}

// NewMonitor constructs a Monitor parented by parent, wired to receive
// input. The returned process is in the Ready state; the caller still
// must call Execute.
func NewMonitor(parent process.Process, callback func(process.Process, output.Value), eofCallback func(process.Process)) *Monitor {
	m := &Monitor{Callback: callback, EOFCallback: eofCallback}
	m.Base = process.New(parent, process.Flags{InputEnabled: true}, m)
	return m
}

func (m *Monitor) OnWrite(v output.Value) bool {
	if m.Callback != nil {
		m.Callback(m, v)
	}
	return true
}

func (m *Monitor) OnEOF() {
	if m.EOFCallback != nil {
		m.EOFCallback(m)
		return
	}
	m.Base.OnEOF()
}

// Printer writes a fixed payload to its stdout on execute and exits 0.
type Printer struct {
	*process.Base
	Payload output.Value
}

// NewPrinter constructs a Printer that will emit payload once executed.
func NewPrinter(parent process.Process, payload output.Value) *Printer {
	p := &Printer{Payload: payload}
	p.Base = process.New(parent, process.Flags{}, p)
	return p
}

func (p *Printer) OnExecute(args []string) (int, bool) {
	if p.Stdout() != nil {
		p.Stdout().Write(p.Payload)
	}
	return 0, true
}

// Caller invokes Fn once on execute and exits with whatever code Fn
// returns.
type Caller struct {
	*process.Base
	Fn func(self process.Process) int
}

// NewCaller constructs a Caller that will invoke fn once executed.
func NewCaller(parent process.Process, fn func(process.Process) int) *Caller {
	c := &Caller{Fn: fn}
	c.Base = process.New(parent, process.Flags{}, c)
	return c
}

func (c *Caller) OnExecute(args []string) (int, bool) {
	code := 0
	if c.Fn != nil {
		code = c.Fn(c)
	}
	return code, true
}
