// Package terminal implements the controlling TTY of §4.2: it owns the
// keyboard, the input buffer, the prompt, and the output pane, and routes
// keystrokes to the foreground process. It is the root of the process
// tree — it has no parent and TTY=true.
//
// Ordinary (non-raw) input is read through github.com/chzyer/readline,
// the way the teacher shell reads its command line: readline owns the
// real terminal's raw mode, cursor rendering, and backspace/left/right
// editing, and reports Ctrl-C as readline.ErrInterrupt and Ctrl-D-on-an-
// empty-line as io.EOF. Arrow-up/down history navigation, Ctrl-U, and
// Ctrl-L are NOT delegated to readline's own (global, file-backed)
// history, because §3 gives every process its own History/HistoryIndex;
// instead they are intercepted per keystroke through a readline.Listener,
// which rewrites the in-progress line against the foreground process's
// own history buffer.
//
// RawInput processes (the modal editor, or any builtin that opts in) are
// switched into raw mode directly with golang.org/x/term and read
// key-by-key, bypassing readline entirely, since their keystrokes are not
// line-oriented at all.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"webshell/internal/output"
	"webshell/internal/painter"
	"webshell/internal/process"
)

// Control-character codes readline's raw reader reports to a Listener;
// arrow keys and common Emacs bindings are translated to these before
// they ever reach application code.
const (
	ctrlA = 1
	ctrlB = 2
	ctrlD = 4
	ctrlE = 5
	ctrlF = 6
	ctrlK = 11
	ctrlL = 12
	ctrlN = 14 // arrow down
	ctrlP = 16 // arrow up
	ctrlU = 21
)

// Terminal is the root process of the tree: the controlling TTY.
type Terminal struct {
	*process.Base

	rl        *readline.Instance
	paint     painter.Painter
	out       io.Writer
	rawMode   bool
	rawReader *bufio.Reader

	// newest preserves the in-progress input line while the user browses
	// history with the arrow keys, restored once they browse back past
	// the end of history (§4.2).
	newest string

	// returned is set once a child notifies OnReturn on the (always
	// Running) terminal, ending the session.
	returned bool
	lastCode int
}

// Config configures a Terminal at construction.
type Config struct {
	Out             io.Writer
	Painter         painter.Painter
	InterruptPrompt string
	EOFPrompt       string
	AutoComplete    readline.AutoCompleter
}

// New constructs a Terminal writing to cfg.Out and reading from the
// process's real stdin. The returned Terminal is already Running — it is
// the root of the process tree and is never Execute'd by anyone else.
func New(cfg Config) (*Terminal, error) {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	t := &Terminal{out: cfg.Out, paint: cfg.Painter}
	t.Base = process.New(nil, process.Flags{InputEnabled: true, TTY: true}, t)

	rl, err := readline.NewEx(&readline.Config{
		Stdout:                 cfg.Out,
		HistoryLimit:           -1, // history is owned per-process, not by readline
		DisableAutoSaveHistory: true,
		InterruptPrompt:        cfg.InterruptPrompt,
		EOFPrompt:              cfg.EOFPrompt,
		Listener:               t,
		AutoComplete:           cfg.AutoComplete,
	})
	if err != nil {
		return nil, fmt.Errorf("terminal: failed to start line editor: %w", err)
	}
	t.rl = rl

	// The terminal is the root of the process tree: it has no parent to
	// claim foreground from, so it starts itself running directly
	// through the normal Execute path (nil stdin, nil parent — both
	// handled by process.Base.Execute as no-ops).
	t.Execute(nil)
	return t, nil
}

// Close releases the underlying line editor.
func (t *Terminal) Close() error { return t.rl.Close() }

// OnWrite renders payload to the output pane. Auto-scroll is implicit: a
// real terminal scrolls as more lines are written.
func (t *Terminal) OnWrite(v output.Value) bool {
	v.Render(t.out)
	io.WriteString(t.out, "\n")
	return true
}

// OnReturn writes the one-line epitaph of §7 and disables input, ending
// the interactive session: "[returned <code>]".
func (t *Terminal) OnReturn(child process.Process, code int) {
	t.returned = true
	t.lastCode = code
	fmt.Fprintln(t.out, t.paint.Prompt(code, fmt.Sprintf("[returned %d]", code)))
	t.Base.OnReturn(child, code)
}

// OnEOF keeps the terminal running when a job's last stage exits and
// delivers EOF to its stdout (the terminal); the session ends only through
// OnReturn.
func (t *Terminal) OnEOF() {}

// OnInterrupt keeps the terminal running when an interrupt bubbles up
// from a child; only the interrupted processes themselves exit.
func (t *Terminal) OnInterrupt() {}

// Returned reports whether the root job has returned (the run loop's
// stop condition).
func (t *Terminal) Returned() bool { return t.returned }

// SetPrompt sets the prompt rendered before the next Readline call.
func (t *Terminal) SetPrompt(s string) { t.rl.SetPrompt(s) }

// ClearScreen clears the output pane — Ctrl-L's effect.
func (t *Terminal) ClearScreen() { fmt.Fprint(t.out, "\x1b[2J\x1b[H") }

// ReadLine blocks for one line of ordinary (non-raw) input from the
// foreground process's perspective: it returns the assembled line, or
// io.EOF / readline.ErrInterrupt.
func (t *Terminal) ReadLine() (string, error) {
	return t.rl.Readline()
}

// Keypress delivers one assembled line (the user pressed Enter) to the
// foreground process, per §4.2. fg is the current foreground process;
// this is called by the run loop after ReadLine returns successfully.
func (t *Terminal) Keypress(fg process.Process, line string) {
	if fg.Echo() {
		display := line
		if fg.Password() {
			display = strings.Repeat("*", len(line))
		}
		fmt.Fprintln(t.out, display)
	}
	if !fg.Password() && strings.TrimSpace(line) != "" {
		fg.AppendHistory(line)
	}
	fg.Write(output.Text(line))
	fg.SetHistoryIndex(len(fg.History()))
}

// HandleEOF implements Ctrl-D on an empty line: echo ExitInput (if any)
// and deliver EOF to fg.
func (t *Terminal) HandleEOF(fg process.Process) {
	if fg.ExitInput() != "" {
		fmt.Fprintln(t.out, fg.ExitInput())
	}
	fg.EOF()
}

// HandleInterrupt implements Ctrl-C: interrupt every process in fg's job.
func (t *Terminal) HandleInterrupt(fg process.Process) {
	for _, p := range fg.Job() {
		p.Interrupt()
	}
}

// EnterRaw switches the real terminal into raw byte mode for a RawInput
// foreground process (the modal editor, typically) and returns a restore
// function the caller must invoke once that process is no longer
// foreground.
func (t *Terminal) EnterRaw(fd int) (restore func(), err error) {
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("terminal: failed to enter raw mode: %w", err)
	}
	t.rawMode = true
	return func() {
		t.rawMode = false
		_ = term.Restore(fd, old)
	}, nil
}

// Foreground reports the process currently receiving keyboard input.
func (t *Terminal) Foreground() process.Process { return t.foreground() }

// ReadKey reads and decodes one raw keystroke from the real stdin,
// translating the handful of ANSI escape sequences arrow keys send into
// SpecialKey values; everything else is reported as its rune. The
// terminal must already be in raw mode (see EnterRaw) for this to read
// key-by-key instead of line-buffered.
func (t *Terminal) ReadKey() (process.KeyEvent, error) {
	if t.rawReader == nil {
		t.rawReader = bufio.NewReader(os.Stdin)
	}
	r, _, err := t.rawReader.ReadRune()
	if err != nil {
		return process.KeyEvent{}, err
	}

	switch r {
	case 27: // ESC, possibly the start of an arrow-key sequence
		next, _, err := t.rawReader.ReadRune()
		if err != nil || next != '[' {
			return process.KeyEvent{Key: process.KeyEscape}, nil
		}
		dir, _, err := t.rawReader.ReadRune()
		if err != nil {
			return process.KeyEvent{Key: process.KeyEscape}, nil
		}
		switch dir {
		case 'A':
			return process.KeyEvent{Key: process.KeyArrowUp}, nil
		case 'B':
			return process.KeyEvent{Key: process.KeyArrowDown}, nil
		case 'C':
			return process.KeyEvent{Key: process.KeyArrowRight}, nil
		case 'D':
			return process.KeyEvent{Key: process.KeyArrowLeft}, nil
		default:
			return process.KeyEvent{Key: process.KeyEscape}, nil
		}
	case '\r', '\n':
		return process.KeyEvent{Key: process.KeyEnter}, nil
	case 127, 8:
		return process.KeyEvent{Key: process.KeyBackspace}, nil
	case 9:
		return process.KeyEvent{Key: process.KeyTab}, nil
	default:
		return process.KeyEvent{Rune: r, Ctrl: r < 32}, nil
	}
}

// OnChange is readline's per-keystroke Listener hook. It intercepts
// arrow-up/down (history navigation against the foreground process's own
// History, preserving the in-progress line as "newest" at the boundary,
// per §4.2) and Ctrl-U (clear buffer, gated on InputEnabled), and clears
// the screen on Ctrl-L. Every other key passes through unchanged to
// readline's own editing.
func (t *Terminal) OnChange(line []rune, pos int, key rune) ([]rune, int, bool) {
	fg := t.foreground()
	if fg == nil {
		return nil, 0, false
	}

	switch key {
	case ctrlU:
		if !fg.InputEnabled() {
			return nil, 0, false
		}
		return []rune{}, 0, true
	case ctrlL:
		t.ClearScreen()
		return nil, 0, false
	case ctrlP:
		return t.historyNav(fg, line, -1)
	case ctrlN:
		return t.historyNav(fg, line, +1)
	default:
		return nil, 0, false
	}
}

// historyNav moves the foreground's HistoryIndex by delta, saving the
// in-progress buffer as "newest" when leaving the end of history and
// restoring it when returning there.
func (t *Terminal) historyNav(fg process.Process, current []rune, delta int) ([]rune, int, bool) {
	hist := fg.History()
	idx := fg.HistoryIndex()
	atEnd := idx >= len(hist)

	if delta < 0 && idx == 0 {
		return nil, 0, false
	}
	if delta > 0 && atEnd {
		return nil, 0, false
	}

	if atEnd && delta < 0 {
		t.newest = string(current)
	}

	idx += delta
	fg.SetHistoryIndex(idx)

	var text string
	if idx >= len(hist) {
		text = t.newest
	} else {
		text = hist[idx]
	}
	return []rune(text), len([]rune(text)), true
}

// foreground resolves the process currently receiving keyboard input:
// the terminal's own Stdout, which process.Base.Execute points at each
// process launched with this terminal as its Stdin and which is reset when
// a job returns (see process.restoreForeground); the terminal itself when
// Stdout is unset.
func (t *Terminal) foreground() process.Process {
	fg := t.Stdout()
	if fg == nil {
		return t
	}
	return fg
}

// IsEOFErr reports whether err is the io.EOF readline reports for a
// Ctrl-D on an empty line.
func IsEOFErr(err error) bool { return errors.Is(err, io.EOF) }

// IsInterruptErr reports whether err is readline's Ctrl-C signal.
func IsInterruptErr(err error) bool { return errors.Is(err, readline.ErrInterrupt) }
