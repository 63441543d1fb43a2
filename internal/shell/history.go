package shell

import (
	"strings"

	"golang.org/x/sync/singleflight"

	"webshell/internal/services"
)

// loadHistory blocks for the one-time boot read of the history file. A
// missing file is not an error — it just means there is no history yet.
func loadHistory(storage *services.Storage, path string) []string {
	res := <-storage.Read(path).Done()
	if res.Err != nil {
		return nil
	}
	return strings.FieldsFunc(res.Value, func(r rune) bool { return r == '\n' })
}

// persistHistory writes the last size lines of lines to path. Concurrent
// calls (the user hitting Enter repeatedly before the previous write's
// goroutine has resolved) are collapsed by group into a single write in
// flight, the way the teacher's profile loader collapses concurrent
// reads of the same file.
func (sh *Shell) persistHistory() {
	lines := sh.History()
	if len(lines) > sh.cfg.HistSize {
		lines = lines[len(lines)-sh.cfg.HistSize:]
	}
	content := strings.Join(lines, "\n")

	sh.histGroup.DoChan("hist", func() (any, error) {
		res := <-sh.storage.Write(sh.cfg.HistFile, content).Done()
		return nil, res.Err
	})
}
