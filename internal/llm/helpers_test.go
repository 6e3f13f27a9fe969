package llm

import (
	"context"
	"sync"
)

// scriptedClient returns canned responses in order, then repeats the last one.
type scriptedClient struct {
	replies []scriptedReply
	calls   int
	mu      sync.Mutex
	last    Request
}

type scriptedReply struct {
	err  error
	text string
}

func (s *scriptedClient) Generate(_ context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	r := s.replies[idx]
	if r.err != nil {
		return Response{}, r.err
	}
	return Response{Text: r.text}, nil
}
