// Command webshell boots the terminal, the async service facades, and
// the root shell, then drives the single cooperative event loop: read
// one unit of input (a line, or — for a RawInput foreground like the
// editor — one keystroke), deliver it, and service any background
// service completions (sleep, curl) that have come due in the meantime.
// It replaces cmd/ebash's thin Run() wrapper, since this model's boot
// sequence wires several more components than the teacher shell's did.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"webshell/internal/completer"
	"webshell/internal/config"
	"webshell/internal/painter"
	"webshell/internal/process"
	"webshell/internal/services"
	"webshell/internal/shell"
	"webshell/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	paint := painter.NewPainter(cfg.PromptTheme)

	storage := services.NewStorage(cfg.StorePath, sugar)
	timer := services.NewTimer()
	httpSvc := services.NewHTTP()

	// sh is wired into the completer's job lookup after construction: the
	// completer must exist before the terminal (to configure readline's
	// AutoComplete), but it only needs sh once a kill candidate list is
	// actually requested.
	var sh *shell.Shell
	comp := completer.New(storage, func() []process.Process {
		if sh == nil {
			return nil
		}
		return sh.Children()
	})

	term, err := terminal.New(terminal.Config{
		Out:             os.Stdout,
		Painter:         paint,
		InterruptPrompt: cfg.InterruptEcho,
		EOFPrompt:       "",
		AutoComplete:    comp,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer term.Close()

	tasks := make(chan func(), 64)
	dispatch := func(f func()) { tasks <- f }

	sh = shell.New(term, cfg, storage, timer, httpSvc, paint, dispatch)
	sh.Execute(nil)

	runLoop(term, tasks, comp)
}

// runLoop is the event loop: it alternates between the line-oriented path
// (ordinary foreground processes) and the raw-keystroke path (a
// RawInput foreground, i.e. the editor), draining dispatched service
// completions from tasks as they arrive on either path.
func runLoop(term *terminal.Terminal, tasks chan func(), comp *completer.Completer) {
	for !term.Returned() {
		fg := term.Foreground()
		if fg.RawInput() {
			runRaw(term, fg, tasks)
			continue
		}
		comp.Update()
		runLine(term, fg, tasks)
	}
}

func runLine(term *terminal.Terminal, fg process.Process, tasks chan func()) {
	term.SetPrompt(fg.Prompt())

	type result struct {
		line string
		err  error
	}
	lines := make(chan result, 1)
	go func() {
		l, err := term.ReadLine()
		lines <- result{l, err}
	}()

	select {
	case f := <-tasks:
		f()
	case r := <-lines:
		handleLine(term, fg, r.line, r.err)
	}
}

func handleLine(term *terminal.Terminal, fg process.Process, line string, err error) {
	switch {
	case terminal.IsInterruptErr(err):
		term.HandleInterrupt(fg)
	case terminal.IsEOFErr(err):
		term.HandleEOF(fg)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
	default:
		term.Keypress(fg, line)
	}
}

func runRaw(term *terminal.Terminal, fg process.Process, tasks chan func()) {
	receiver, ok := fg.(process.InputReceiver)
	if !ok {
		return
	}
	restore, err := term.EnterRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer restore()

	keys := make(chan process.KeyEvent, 1)
	errs := make(chan error, 1)
	go func() {
		for {
			ev, err := term.ReadKey()
			if err != nil {
				errs <- err
				return
			}
			keys <- ev
		}
	}()

	for fg.State() == process.Running {
		select {
		case f := <-tasks:
			f()
		case ev := <-keys:
			receiver.OnInput(ev)
		case err := <-errs:
			if errors.Is(err, io.EOF) {
				fg.EOF()
			}
			return
		}
	}
}
