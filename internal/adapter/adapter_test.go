package adapter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

// recorder is a tiny stdout stand-in that records every Write it
// receives, used across these tests.
type recorder struct {
	*process.Base
	got []output.Value
}

func newRecorder() *recorder {
	r := &recorder{}
	r.Base = process.New(nil, process.Flags{InputEnabled: true}, r)
	r.Execute(nil)
	return r
}

func (r *recorder) OnWrite(v output.Value) bool {
	r.got = append(r.got, v)
	return true
}

func TestPrinterEmitsPayloadAndExits0(t *testing.T) {
	out := newRecorder()
	p := adapter.NewPrinter(nil, output.Text("hello"))
	p.SetStdout(out)
	p.Execute(nil)

	require.Len(t, out.got, 1)
	assert.Equal(t, "hello", out.got[0].Str())
	assert.Equal(t, process.Terminated, p.State())
	assert.Equal(t, 0, p.ExitCode())
}

func TestCallerInvokesFnOnceAndExitsWithItsCode(t *testing.T) {
	calls := 0
	c := adapter.NewCaller(nil, func(process.Process) int {
		calls++
		return 2
	})
	c.Execute(nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, c.ExitCode())
}

func TestMonitorInvokesCallbackOnEachWrite(t *testing.T) {
	var seen []string
	m := adapter.NewMonitor(nil, func(_ process.Process, v output.Value) {
		seen = append(seen, v.Str())
	}, nil)
	m.Execute(nil)

	m.Write(output.Text("a"))
	m.Write(output.Text("b"))
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestMonitorEOFCallbackOverridesDefault(t *testing.T) {
	called := false
	m := adapter.NewMonitor(nil, nil, func(process.Process) {
		called = true
	})
	m.Execute(nil)
	m.EOF()

	assert.True(t, called)
	assert.Equal(t, process.Running, m.State(), "custom EOFCallback must not auto-exit")
}

func TestMonitorDefaultEOFExitsWhenInputEnabled(t *testing.T) {
	m := adapter.NewMonitor(nil, nil, nil)
	m.Execute(nil)
	m.EOF()
	assert.Equal(t, process.Terminated, m.State())
}
