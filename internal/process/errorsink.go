package process

import "webshell/internal/output"

// Paint styles an error-sink payload for its downstream renderer. The
// shell supplies the real ANSI implementation (internal/painter's
// Painter.Error); tests and headless wiring use PlainPaint.
type Paint func(s string) string

// PlainPaint leaves text unstyled.
func PlainPaint(s string) string { return s }

// ErrorSink is a trivial, always-live process that wraps every write into
// an error-styled Text payload and forwards it downstream. The shell owns
// one ErrorSink and sets it as the Stderr of every pipeline stage it
// launches (§2, "Error sink").
type ErrorSink struct {
	*Base
	paint Paint
}

// NewErrorSink constructs an ErrorSink wired to forward into stdout (the
// terminal, typically). It is started immediately — an error sink is
// conceptually always running — rather than waiting for an Execute call,
// since it has no args and no owning pipeline of its own.
func NewErrorSink(stdout Process, paint Paint) *ErrorSink {
	if paint == nil {
		paint = PlainPaint
	}
	s := &ErrorSink{paint: paint}
	s.Base = New(nil, Flags{InputEnabled: true}, s)
	s.SetStdout(stdout)
	s.Base.state = Running
	return s
}

func (s *ErrorSink) OnWrite(v output.Value) bool {
	if s.stdout == nil {
		return true
	}
	return s.stdout.Write(output.Text(s.paint(v.Str())))
}

// OnEOF keeps the sink running: every stage that exits delivers EOF to its
// Stderr, and one sink is shared by all of them.
func (s *ErrorSink) OnEOF() {}
