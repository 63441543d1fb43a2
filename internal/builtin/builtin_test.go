package builtin_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webshell/internal/builtin"
	"webshell/internal/output"
	"webshell/internal/process"
	"webshell/internal/services"
)

type fakeParent struct{ *process.Base }

func newFakeParent() *fakeParent {
	p := &fakeParent{}
	p.Base = process.New(nil, process.Flags{InputEnabled: true}, p)
	p.Execute(nil)
	return p
}

type sink struct {
	*process.Base
	writes []output.Value
}

func newSink(parent process.Process) *sink {
	s := &sink{}
	s.Base = process.New(parent, process.Flags{InputEnabled: true}, s)
	s.Execute(nil)
	return s
}

func (s *sink) OnWrite(v output.Value) bool {
	s.writes = append(s.writes, v)
	return true
}

func newServices(t *testing.T) (builtin.Services, chan func()) {
	t.Helper()
	storage := services.NewStorage(filepath.Join(t.TempDir(), "store.json"), zap.NewNop().Sugar())
	tasks := make(chan func(), 16)
	return builtin.Services{
		Storage:  storage,
		Timer:    services.NewTimer(),
		HTTP:     services.NewHTTP(),
		Dispatch: func(f func()) { tasks <- f },
	}, tasks
}

func run(t *testing.T, name string, argv []string) (*fakeParent, *sink, process.Process) {
	t.Helper()
	svc, _ := newServices(t)
	factory, ok := builtin.Lookup(name)
	require.True(t, ok)

	parent := newFakeParent()
	proc := factory(parent, argv, svc)
	out := newSink(proc)
	proc.SetStdout(out)
	proc.SetStderr(out)
	proc.Execute(argv)
	return parent, out, proc
}

func TestCatWritesStoredContent(t *testing.T) {
	svc, _ := newServices(t)
	require.NoError(t, (<-svc.Storage.Write("f", "hello").Done()).Err)

	factory, _ := builtin.Lookup("cat")
	parent := newFakeParent()
	proc := factory(parent, []string{"cat", "f"}, svc)
	out := newSink(proc)
	proc.SetStdout(out)
	proc.Execute([]string{"cat", "f"})

	require.Len(t, out.writes, 1)
	assert.Equal(t, "hello", out.writes[0].Str())
}

func TestCatMissingFileExitsNonZero(t *testing.T) {
	svc, _ := newServices(t)
	factory, _ := builtin.Lookup("cat")
	parent := newFakeParent()
	proc := factory(parent, []string{"cat", "ghost"}, svc)
	out := newSink(proc)
	proc.SetStdout(out)
	proc.SetStderr(out)
	proc.Execute([]string{"cat", "ghost"})

	assert.NotEqual(t, 0, proc.ExitCode())
	assert.Len(t, out.writes, 1)
}

func TestHeadLimitsThenStopsAccepting(t *testing.T) {
	_, out, proc := run(t, "head", []string{"head", "2"})
	for i := 0; i < 5; i++ {
		proc.Write(output.Text("line"))
	}
	require.Len(t, out.writes, 1)
	assert.Len(t, out.writes[0].Items(), 2)
}

func TestTailKeepsLastN(t *testing.T) {
	_, out, proc := run(t, "tail", []string{"tail", "2"})
	for _, l := range []string{"a", "b", "c"} {
		proc.Write(output.Text(l))
	}
	proc.EOF()
	require.Len(t, out.writes, 1)
	items := out.writes[0].Items()
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Str())
	assert.Equal(t, "c", items[1].Str())
}

func TestGrepForwardsOnlyMatches(t *testing.T) {
	_, out, proc := run(t, "grep", []string{"grep", "^a"})
	proc.Write(output.Text("apple"))
	proc.Write(output.Text("banana"))
	proc.EOF()
	require.Len(t, out.writes, 1)
	items := out.writes[0].Items()
	require.Len(t, items, 1)
	assert.Equal(t, "apple", items[0].Str())
	assert.Equal(t, 0, proc.ExitCode())
}

func TestSleepCompletesAsynchronously(t *testing.T) {
	svc, tasks := newServices(t)
	factory, _ := builtin.Lookup("sleep")
	parent := newFakeParent()
	proc := factory(parent, []string{"sleep", "0.01"}, svc)
	proc.Execute([]string{"sleep", "0.01"})

	select {
	case f := <-tasks:
		f()
	case <-time.After(time.Second):
		t.Fatal("sleep never dispatched completion")
	}
	assert.Equal(t, 0, proc.ExitCode())
}
