package builtin

import (
	"time"

	"webshell/internal/output"
	"webshell/internal/process"
	"webshell/internal/services"
)

// curlHTTPTimeout bounds how long a request is allowed to stay in
// flight before it's treated as a rejection.
const curlHTTPTimeout = 30 * time.Second

// curlCmd issues an HTTP GET and waits for it asynchronously: OnExecute
// starts the request and stays Running; the result is delivered back to
// the single event-loop goroutine through svc.Dispatch once the request
// service's background goroutine resolves it, and OnInterrupt aborts the
// in-flight request on Ctrl-C instead of blocking the whole terminal for
// the request's duration.
type curlCmd struct {
	*process.Base
	svc    Services
	url    string
	handle *services.Abortable[string]
}

func newCurl(parent process.Process, argv []string, svc Services) process.Process {
	c := &curlCmd{svc: svc}
	if len(argv) >= 2 {
		c.url = argv[1]
	}
	c.Base = process.New(parent, process.Flags{}, c)
	return c
}

func (c *curlCmd) OnExecute(args []string) (int, bool) {
	if c.url == "" {
		return usageErr(c, "curl: missing url"), true
	}
	h := c.svc.HTTP.Request("GET", c.url, curlHTTPTimeout)
	c.handle = h
	go func() {
		res := <-h.Done()
		c.svc.Dispatch(func() {
			if c.State() != process.Running {
				return
			}
			if res.Err != nil {
				c.Exit(cmdErr(c, "curl", res.Err))
				return
			}
			if c.Stdout() != nil {
				c.Stdout().Write(output.Raw(res.Value))
			}
			c.Exit(0)
		})
	}()
	return 0, false
}

func (c *curlCmd) OnInterrupt() {
	if c.handle != nil {
		c.handle.Abort()
	}
	c.Base.OnInterrupt()
}
