package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTP is the async network service of §6.2. It wraps a
// go-retryablehttp.Client with retries turned off: this system's contract
// is "non-200 is a rejection", which retrying would quietly paper over,
// so only the client's context-based cancellation plumbing is used.
type HTTP struct {
	client *retryablehttp.Client
}

// NewHTTP constructs an HTTP service with a silent retryablehttp client
// (no built-in request logging — the shell's own error sink reports
// failures, per §7).
func NewHTTP() *HTTP {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		return false, nil
	}
	client.Logger = nil
	return &HTTP{client: client}
}

// Request performs an HTTP call and resolves with the response body on
// status 200, or rejects with the numeric status otherwise. timeout of
// zero means no deadline beyond Abort. Abort cancels the in-flight
// request.
func (h *HTTP) Request(method, url string, timeout time.Duration) *Abortable[string] {
	base := context.Background()
	release := func() {}
	if timeout > 0 {
		// release frees the timeout once the request has failed, been
		// aborted, or completed.
		base, release = context.WithTimeout(base, timeout)
	}
	handle, ctx, resolve := newAbortable[string](base)

	req, err := retryablehttp.NewRequest(method, url, nil)
	if err != nil {
		release()
		resolve(Result[string]{Err: err})
		return handle
	}
	req = req.WithContext(ctx)

	go func() {
		defer release()
		resp, err := h.client.Do(req)
		if err != nil {
			resolve(Result[string]{Err: err})
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			resolve(Result[string]{Err: err})
			return
		}
		if resp.StatusCode != 200 {
			resolve(Result[string]{Err: fmt.Errorf("%d", resp.StatusCode)})
			return
		}
		resolve(Result[string]{Value: string(body)})
	}()

	return handle
}
