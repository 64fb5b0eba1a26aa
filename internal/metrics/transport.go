// internal/metrics/transport.go
package metrics

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"
)

// Transport records every round trip into Sink.
// A sample is emitted when the response body hits EOF or is closed, so the
// latency covers the full body. Failed round trips are emitted immediately.
type Transport struct {
	Base http.RoundTripper
	Sink RequestSink
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Sink.ObserveRequest(RequestSample{
			Host:    host,
			Start:   start,
			Latency: time.Since(start),
			Err:     err,
		})
		return nil, err
	}

	resp.Body = &recordingBody{
		ReadCloser: resp.Body,
		done: func(n int64, readErr error) {
			t.Sink.ObserveRequest(RequestSample{
				Host:    host,
				Status:  resp.StatusCode,
				Start:   start,
				Latency: time.Since(start),
				BytesIn: n,
				Err:     readErr,
			})
		},
	}
	return resp, nil
}

type recordingBody struct {
	io.ReadCloser
	n    int64
	once sync.Once
	done func(n int64, err error)
}

func (b *recordingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.n += int64(n)
	switch {
	case errors.Is(err, io.EOF):
		b.finish(nil)
	case err != nil:
		b.finish(err)
	}
	return n, err
}

func (b *recordingBody) Close() error {
	err := b.ReadCloser.Close()
	b.finish(nil)
	return err
}

func (b *recordingBody) finish(err error) {
	b.once.Do(func() { b.done(b.n, err) })
}
