package editor

import (
	"context"
	"sync"
	"time"
)

// CompileFunc sends projected markup to the external HTML compiler and
// returns the compiled HTML. Implementations must honor ctx cancellation:
// a superseded in-flight request is cancelled when a newer one is issued.
type CompileFunc func(ctx context.Context, markup string) (string, error)

// CompileResult is delivered for the most recently requested document state
// only; results that resolve out of order are discarded by token.
type CompileResult struct {
	Token uint64
	HTML  string
	Err   error
}

// CompileScheduler debounces compile requests and guarantees that the
// preview always reflects the most recently requested state, never a stale
// one that resolves late. Each scheduled state gets a monotonically
// increasing token; a result is delivered only while its token is current.
type CompileScheduler struct {
	compile CompileFunc
	deliver func(CompileResult)
	delay   time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	token   uint64
	cancel  context.CancelFunc
}

// NewCompileScheduler wires a scheduler to a compile function and a result
// sink. deliver is invoked from the compile goroutine.
func NewCompileScheduler(delay time.Duration, compile CompileFunc, deliver func(CompileResult)) *CompileScheduler {
	return &CompileScheduler{compile: compile, deliver: deliver, delay: delay}
}

// Schedule (re)starts the debounce window for the given projected markup.
// A newer call before the window elapses replaces the pending markup and
// restarts the window.
func (s *CompileScheduler) Schedule(markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = markup
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Flush skips the remainder of the debounce window and issues the pending
// request immediately.
func (s *CompileScheduler) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Stop cancels any pending schedule and in-flight request.
func (s *CompileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.token++ // invalidate anything still in flight
}

func (s *CompileScheduler) fire() {
	s.mu.Lock()
	markup := s.pending
	if markup == "" {
		s.mu.Unlock()
		return
	}
	s.pending = ""
	s.token++
	token := s.token
	if s.cancel != nil {
		s.cancel() // supersede the in-flight request
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		html, err := s.compile(ctx, markup)

		s.mu.Lock()
		stale := token != s.token
		s.mu.Unlock()
		if stale {
			return // a newer state was requested while this one compiled
		}
		s.deliver(CompileResult{Token: token, HTML: html, Err: err})
	}()
}
