package shell_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webshell/internal/config"
	"webshell/internal/output"
	"webshell/internal/painter"
	"webshell/internal/process"
	"webshell/internal/services"
	"webshell/internal/shell"
)

type fakeRoot struct {
	*process.Base
	writes []output.Value
}

func newFakeRoot(tty bool) *fakeRoot {
	r := &fakeRoot{}
	r.Base = process.New(nil, process.Flags{InputEnabled: true, TTY: tty}, r)
	r.Execute(nil)
	return r
}

func (r *fakeRoot) OnWrite(v output.Value) bool {
	r.writes = append(r.writes, v)
	return true
}

// OnEOF keeps the fake root running when a job's last stage exits and
// delivers EOF to it, as the terminal does.
func (r *fakeRoot) OnEOF() {}

func newTestShell(t *testing.T, tty bool) (*shell.Shell, *fakeRoot, *services.Storage, chan func()) {
	t.Helper()
	root := newFakeRoot(tty)
	log := zap.NewNop().Sugar()
	storage := services.NewStorage(filepath.Join(t.TempDir(), "store.json"), log)
	cfg := config.Default()
	cfg.HistFile = filepath.Join(t.TempDir(), "history")
	cfg.ProfilePath = filepath.Join(t.TempDir(), "does-not-exist")

	tasks := make(chan func(), 16)
	dispatch := func(f func()) { tasks <- f }

	sh := shell.New(root, cfg, storage, services.NewTimer(), services.NewHTTP(), painter.NewPainter("webshell"), dispatch)
	sh.Execute(nil)
	return sh, root, storage, tasks
}

func runTask(t *testing.T, tasks chan func(), timeout time.Duration) {
	t.Helper()
	select {
	case f := <-tasks:
		f()
	case <-time.After(timeout):
		t.Fatal("timed out waiting for dispatched task")
	}
}

func TestPipelineFiltersThroughGrep(t *testing.T) {
	sh, root, storage, _ := newTestShell(t, false)
	require.NoError(t, (<-storage.Write("notes.txt", "x").Done()).Err)
	require.NoError(t, (<-storage.Write("other.txt", "y").Done()).Err)

	sh.Write(output.Text("ls | grep notes"))

	require.Len(t, root.writes, 1)
	assert.Equal(t, []string{"notes.txt"}, strs(root.writes[0].Items()))
}

func TestGrepEmptyMatchProducesNoOutput(t *testing.T) {
	sh, root, storage, _ := newTestShell(t, false)
	require.NoError(t, (<-storage.Write("a.txt", "x").Done()).Err)

	sh.Write(output.Text("ls | grep zzz"))

	assert.Empty(t, root.writes)
	assert.Equal(t, 1, sh.LastCode())
}

func TestTailBuffersLastLines(t *testing.T) {
	sh, root, storage, _ := newTestShell(t, false)
	require.NoError(t, (<-storage.Write("a.txt", "a").Done()).Err)
	require.NoError(t, (<-storage.Write("b.txt", "b").Done()).Err)
	require.NoError(t, (<-storage.Write("c.txt", "c").Done()).Err)

	sh.Write(output.Text("ls | tail 2"))

	require.Len(t, root.writes, 1)
	assert.Equal(t, []string{"b.txt", "c.txt"}, strs(root.writes[0].Items()))
}

func TestMissingCommandReportsNotFound(t *testing.T) {
	sh, _, _, _ := newTestShell(t, false)
	sh.Write(output.Text("frobnicate"))
	assert.Equal(t, 127, sh.LastCode())
}

func TestInterruptAbortsSleepMidWait(t *testing.T) {
	sh, _, _, tasks := newTestShell(t, false)
	sh.Write(output.Text("sleep 60"))

	require.Len(t, sh.Children(), 1)
	job := sh.Children()[0]
	job.Interrupt()

	runTask(t, tasks, time.Second)
	assert.Equal(t, 130, sh.LastCode())
}

func TestHistoryPersistsAcrossShells(t *testing.T) {
	root := newFakeRoot(true)
	log := zap.NewNop().Sugar()
	dir := t.TempDir()
	storage := services.NewStorage(filepath.Join(dir, "store.json"), log)
	cfg := config.Default()
	cfg.HistFile = filepath.Join(dir, "history")
	cfg.ProfilePath = filepath.Join(dir, "does-not-exist")
	dispatch := func(f func()) { f() }

	sh := shell.New(root, cfg, storage, services.NewTimer(), services.NewHTTP(), painter.NewPainter("webshell"), dispatch)
	sh.Execute(nil)
	sh.AppendHistory("echo persisted")
	sh.Write(output.Text("echo hi"))

	root2 := newFakeRoot(true)
	sh2 := shell.New(root2, cfg, storage, services.NewTimer(), services.NewHTTP(), painter.NewPainter("webshell"), dispatch)
	sh2.Execute(nil)

	assert.Contains(t, sh2.History(), "echo persisted")
}

func strs(vs []output.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Str()
	}
	return out
}
