package builtin

import (
	"container/ring"
	"regexp"
	"strconv"

	"webshell/internal/adapter"
	"webshell/internal/output"
	"webshell/internal/process"
)

const defaultLineCount = 10

// headCmd accumulates at most limit items (decomposed via Items(), so
// one Write carrying an Array counts as several) and flushes them
// downstream as a single output.Array, per spec.md §8's "writes an
// Array" scenarios — either as soon as the limit fills (so a
// still-running upstream learns to stop via OnWrite's false return,
// rather than being cut off by an immediate Exit) or, if fewer than
// limit items ever arrive, on EOF.
type headCmd struct {
	*process.Base
	limit int
	buf   []output.Value
	done  bool
}

func newHead(parent process.Process, argv []string, svc Services) process.Process {
	h := &headCmd{limit: lineCountArg(argv)}
	h.Base = process.New(parent, process.Flags{InputEnabled: true}, h)
	return h
}

func (h *headCmd) OnWrite(v output.Value) bool {
	if h.done {
		return false
	}
	for _, item := range v.Items() {
		if len(h.buf) >= h.limit {
			break
		}
		h.buf = append(h.buf, item)
	}
	if len(h.buf) >= h.limit {
		h.flush()
		h.done = true
		return false
	}
	return true
}

func (h *headCmd) OnEOF() {
	if !h.done {
		h.flush()
	}
	h.Base.OnEOF()
}

func (h *headCmd) flush() {
	if len(h.buf) == 0 {
		return
	}
	if h.Stdout() != nil {
		h.Stdout().Write(output.Array(h.buf))
	}
	h.buf = nil
}

// tailCmd keeps only the most recent limit items (decomposed via
// Items()) in a ring buffer, flushing them as a single output.Array
// once its input ends, per spec.md §8's "single output is an Array"
// scenario.
type tailCmd struct {
	*process.Base
	limit int
	buf   *ring.Ring
	n     int
}

func newTail(parent process.Process, argv []string, svc Services) process.Process {
	limit := lineCountArg(argv)
	t := &tailCmd{limit: limit, buf: ring.New(limit)}
	t.Base = process.New(parent, process.Flags{InputEnabled: true}, t)
	return t
}

func (t *tailCmd) OnWrite(v output.Value) bool {
	for _, item := range v.Items() {
		t.buf.Value = item
		t.buf = t.buf.Next()
		if t.n < t.limit {
			t.n++
		}
	}
	return true
}

func (t *tailCmd) OnEOF() {
	start := t.buf
	if t.n < t.limit {
		start = t.buf.Move(-t.n)
	}
	var items []output.Value
	start.Do(func(v any) {
		if v == nil {
			return
		}
		items = append(items, v.(output.Value))
	})
	if len(items) > 0 && t.Stdout() != nil {
		t.Stdout().Write(output.Array(items))
	}
	t.Base.OnEOF()
}

func lineCountArg(argv []string) int {
	if len(argv) >= 2 {
		if n, err := strconv.Atoi(argv[1]); err == nil && n > 0 {
			return n
		}
	}
	return defaultLineCount
}

// newGrep accumulates every item (decomposed via Items()) whose
// rendered text matches the given pattern and, on EOF, flushes them as
// a single output.Array and exits 1 if nothing matched — spec.md §8's
// "grep empty match ... produces no output and sets ?=1" scenario. An
// invalid pattern exits 2 immediately, the way a shell reports a bad
// regex at parse time rather than at the first line.
func newGrep(parent process.Process, argv []string, svc Services) process.Process {
	if len(argv) < 2 {
		return adapter.NewCaller(parent, func(self process.Process) int {
			return usageErr(self, "grep: missing pattern")
		})
	}
	re, err := regexp.Compile(argv[1])
	if err != nil {
		return adapter.NewCaller(parent, func(self process.Process) int {
			return usageErr(self, "grep: invalid pattern: "+argv[1])
		})
	}

	var matched []output.Value
	m := adapter.NewMonitor(parent, func(self process.Process, v output.Value) {
		for _, item := range v.Items() {
			if re.MatchString(item.Str()) {
				matched = append(matched, item)
			}
		}
	}, nil)
	m.EOFCallback = func(self process.Process) {
		if len(matched) > 0 && self.Stdout() != nil {
			self.Stdout().Write(output.Array(matched))
		}
		code := 0
		if len(matched) == 0 {
			code = 1
		}
		self.Exit(code)
	}
	return m
}

// newTee forwards every write downstream unchanged and also accumulates
// it; on EOF the accumulated text is persisted to storage under argv[1].
func newTee(parent process.Process, argv []string, svc Services) process.Process {
	if len(argv) < 2 {
		return adapter.NewCaller(parent, func(self process.Process) int {
			return usageErr(self, "tee: missing path")
		})
	}
	path := argv[1]
	var lines []string
	m := adapter.NewMonitor(parent, func(self process.Process, v output.Value) {
		lines = append(lines, v.Str())
		if self.Stdout() != nil {
			self.Stdout().Write(v)
		}
	}, nil)
	m.EOFCallback = func(self process.Process) {
		content := ""
		for i, l := range lines {
			if i > 0 {
				content += "\n"
			}
			content += l
		}
		<-svc.Storage.Write(path, content).Done()
		m.Base.OnEOF()
	}
	return m
}

// newClear writes the ANSI clear-screen sequence downstream; the
// terminal's OnWrite renders output.Raw verbatim, so no direct reference
// to the terminal is needed here.
func newClear(parent process.Process, argv []string, svc Services) process.Process {
	return adapter.NewPrinter(parent, output.Raw("\x1b[2J\x1b[H"))
}
