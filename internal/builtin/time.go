package builtin

import (
	"strconv"
	"time"

	"webshell/internal/process"
	"webshell/internal/services"
)

// sleepCmd waits for the given number of seconds, asynchronously, the
// same way curlCmd waits for a request: stays Running, and an
// interrupt aborts the timer immediately instead of waiting it out.
type sleepCmd struct {
	*process.Base
	svc      Services
	duration time.Duration
	argErr   bool
	handle   *services.Abortable[struct{}]
}

func newSleep(parent process.Process, argv []string, svc Services) process.Process {
	s := &sleepCmd{svc: svc}
	if len(argv) < 2 {
		s.argErr = true
	} else if secs, err := strconv.ParseFloat(argv[1], 64); err != nil {
		s.argErr = true
	} else {
		s.duration = time.Duration(secs * float64(time.Second))
	}
	s.Base = process.New(parent, process.Flags{}, s)
	return s
}

func (s *sleepCmd) OnExecute(args []string) (int, bool) {
	if s.argErr {
		return usageErr(s, "sleep: numeric argument required"), true
	}
	h := s.svc.Timer.Timeout(s.duration)
	s.handle = h
	go func() {
		<-h.Done()
		s.svc.Dispatch(func() {
			if s.State() == process.Running {
				s.Exit(0)
			}
		})
	}()
	return 0, false
}

func (s *sleepCmd) OnInterrupt() {
	if s.handle != nil {
		s.handle.Abort()
	}
	s.Base.OnInterrupt()
}
