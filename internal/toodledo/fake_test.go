package toodledo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/teemow/toodledo/internal/transport"
)

// request is one call recorded by fakeTransport.
type request struct {
	Method   string
	Endpoint transport.Endpoint
	Params   url.Values
}

// fakeTransport answers requests with a handler and records them.
type fakeTransport struct {
	mu       sync.Mutex
	requests []request
	handler  func(r request) (json.RawMessage, error)
}

func (f *fakeTransport) Get(_ context.Context, endpoint transport.Endpoint, params url.Values) (json.RawMessage, error) {
	return f.do(request{Method: "GET", Endpoint: endpoint, Params: params})
}

func (f *fakeTransport) Post(_ context.Context, endpoint transport.Endpoint, form url.Values) (json.RawMessage, error) {
	return f.do(request{Method: "POST", Endpoint: endpoint, Params: form})
}

func (f *fakeTransport) do(r request) (json.RawMessage, error) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	if f.handler == nil {
		return nil, fmt.Errorf("no handler for %s", r.Endpoint)
	}
	return f.handler(r)
}

func (f *fakeTransport) Requests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

// fakeSessions hands out the same transport and counts reauthorizations.
type fakeSessions struct {
	transport    *fakeTransport
	sessions     int
	reauthorized int
	reauthErr    error
	onReauth     func()
}

func (s *fakeSessions) Session(context.Context) (transport.Transport, error) {
	s.sessions++
	return s.transport, nil
}

func (s *fakeSessions) Reauthorize(context.Context) error {
	s.reauthorized++
	if s.onReauth != nil {
		s.onReauth()
	}
	return s.reauthErr
}
