package completer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webshell/internal/completer"
	"webshell/internal/process"
	"webshell/internal/services"
)

func TestUpdateCompletesStoredPaths(t *testing.T) {
	storage := services.NewStorage(filepath.Join(t.TempDir(), "store.json"), zap.NewNop().Sugar())
	require.NoError(t, (<-storage.Write("notes", "hi").Done()).Err)

	c := completer.New(storage, nil)
	c.Update()

	candidates, _ := c.Do([]rune("cat "), len("cat "))
	var found bool
	for _, cand := range candidates {
		// readline's PcItem candidates carry a trailing space.
		if string(cand) == "notes " {
			found = true
		}
	}
	assert.True(t, found)
}

type fakeProc struct{ *process.Base }

func TestUpdateCompletesJobIDs(t *testing.T) {
	storage := services.NewStorage(filepath.Join(t.TempDir(), "store.json"), zap.NewNop().Sugar())
	job := &fakeProc{}
	job.Base = process.New(nil, process.Flags{}, job)
	job.SetJob([]process.Process{job})
	job.Execute(nil)

	c := completer.New(storage, func() []process.Process { return []process.Process{job} })
	c.Update()

	candidates, _ := c.Do([]rune("kill "), len("kill "))
	assert.NotEmpty(t, candidates)
}
