package services_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"webshell/internal/services"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	logger, err := zap.NewDevelopment()
	require.NoError(t, err)
	return logger.Sugar()
}

func TestStorageWriteThenRead(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	res := <-store.Write("a", "hello").Done()
	require.NoError(t, res.Err)

	read := <-store.Read("a").Done()
	require.NoError(t, read.Err)
	assert.Equal(t, "hello", read.Value)
}

func TestStorageReadMissingRejects(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	res := <-store.Read("nope").Done()
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "nope: no such file")
}

func TestStorageAppendCreatesKeyIfAbsent(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	<-store.Append("log", "line1\n").Done()
	<-store.Append("log", "line2\n").Done()

	res := <-store.Read("log").Done()
	require.NoError(t, res.Err)
	assert.Equal(t, "line1\nline2\n", res.Value)
}

func TestStorageListReturnsAllKeys(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	<-store.Write("a", "1").Done()
	<-store.Write("ab", "2").Done()
	<-store.Write("abc", "3").Done()
	<-store.Write("zz", "4").Done()

	res := <-store.List("").Done()
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"a", "ab", "abc", "zz"}, res.Value)
}

func TestStorageMoveMissingRejects(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	res := <-store.Move("nope", "elsewhere").Done()
	require.Error(t, res.Err)
}

func TestStorageRemoveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := services.NewStorage(filepath.Join(dir, "store.json"), testLogger(t))

	<-store.Remove("never-existed").Done()
	<-store.Write("a", "1").Done()
	<-store.Remove("a").Done()
	<-store.Remove("a").Done()

	res := <-store.List("").Done()
	assert.Empty(t, res.Value)
}

func TestStoragePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.json")
	store := services.NewStorage(path, testLogger(t))
	<-store.Write("a", "1").Done()

	_, err := os.Stat(path)
	require.NoError(t, err)

	reloaded := services.NewStorage(path, testLogger(t))
	res := <-reloaded.Read("a").Done()
	require.NoError(t, res.Err)
	assert.Equal(t, "1", res.Value)
}

func TestTimeoutResolvesAfterDuration(t *testing.T) {
	timer := services.NewTimer()
	start := time.Now()
	res := <-timer.Timeout(10 * time.Millisecond).Done()
	require.NoError(t, res.Err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestTimeoutAbortPreventsLaterResolution(t *testing.T) {
	timer := services.NewTimer()
	handle := timer.Timeout(50 * time.Millisecond)
	handle.Abort()

	res := <-handle.Done()
	assert.Error(t, res.Err)
}
