package transfer

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Recorder is a test double that captures every transfer request. When Fail
// is set, Send returns it instead of recording.
type Recorder struct {
	mu       sync.Mutex
	requests []Request

	Fail error
}

// NewRecorder constructs a recording gateway for tests.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Send records the request and acknowledges it.
func (r *Recorder) Send(_ context.Context, req Request) (Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Fail != nil {
		return Receipt{}, r.Fail
	}
	r.requests = append(r.requests, req)
	return Receipt{Reference: uuid.NewString()}, nil
}

// Requests returns a copy of the captured requests.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Request, len(r.requests))
	copy(out, r.requests)
	return out
}
