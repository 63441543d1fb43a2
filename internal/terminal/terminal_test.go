package terminal_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshell/internal/output"
	"webshell/internal/painter"
	"webshell/internal/process"
	"webshell/internal/terminal"
)

type fakeJobProcess struct {
	*process.Base
	writes      []output.Value
	interrupted bool
}

func newFakeJobProcess(parent process.Process) *fakeJobProcess {
	p := &fakeJobProcess{}
	p.Base = process.New(parent, process.Flags{InputEnabled: true, Echo: true}, p)
	return p
}

func (f *fakeJobProcess) OnWrite(v output.Value) bool {
	f.writes = append(f.writes, v)
	return true
}

func (f *fakeJobProcess) OnInterrupt() {
	f.interrupted = true
	f.Base.OnInterrupt()
}

func newTestTerminal(t *testing.T) (*terminal.Terminal, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	term, err := terminal.New(terminal.Config{Out: &buf, Painter: painter.NewPainter("webshell")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = term.Close() })
	return term, &buf
}

func TestKeypressEchoesAndAppendsHistory(t *testing.T) {
	term, buf := newTestTerminal(t)
	fg := newFakeJobProcess(term)
	fg.Execute(nil)

	term.Keypress(fg, "echo hi")

	assert.Contains(t, buf.String(), "echo hi")
	require.Len(t, fg.writes, 1)
	assert.Equal(t, "echo hi", fg.writes[0].Str())
	assert.Equal(t, []string{"echo hi"}, fg.History())
	assert.Equal(t, 1, fg.HistoryIndex())
}

func TestKeypressDedupesConsecutiveHistoryLines(t *testing.T) {
	term, _ := newTestTerminal(t)
	fg := newFakeJobProcess(term)
	fg.Execute(nil)

	term.Keypress(fg, "ls")
	term.Keypress(fg, "ls")

	assert.Equal(t, []string{"ls"}, fg.History())
}

func TestKeypressSkipsBlankHistory(t *testing.T) {
	term, _ := newTestTerminal(t)
	fg := newFakeJobProcess(term)
	fg.Execute(nil)

	term.Keypress(fg, "   ")

	assert.Empty(t, fg.History())
}

func TestHandleInterruptInterruptsWholeJob(t *testing.T) {
	term, _ := newTestTerminal(t)
	a := newFakeJobProcess(term)
	b := newFakeJobProcess(term)
	job := []process.Process{a, b}
	a.SetJob(job)
	b.SetJob(job)
	a.Execute(nil)
	b.Execute(nil)

	term.HandleInterrupt(a)

	assert.True(t, a.interrupted)
	assert.True(t, b.interrupted)
}

func TestHandleEOFEchoesExitInputAndDeliversEOF(t *testing.T) {
	var buf bytes.Buffer
	term, err := terminal.New(terminal.Config{Out: &buf})
	require.NoError(t, err)
	defer term.Close()

	fg := &fakeJobProcess{}
	fg.Base = process.New(term, process.Flags{InputEnabled: true, ExitInput: "exit"}, fg)
	fg.Execute(nil)

	term.HandleEOF(fg)

	assert.Contains(t, buf.String(), "exit")
	assert.True(t, fg.InputEnded())
}
