package device

import (
	"sync"
)

type command struct {
	run     func() error
	barrier chan struct{}
}

// Stream is an ordered queue of commands executed by a dedicated goroutine.
// Commands submitted to the same stream run one after the other in submission
// order. Commands of different streams run concurrently.
type Stream struct {
	closing sync.RWMutex
	closed  bool
	cmds    chan command
	done    chan struct{}

	mu       sync.Mutex
	err      error
	executed int
}

func newStream() (s *Stream) {
	s = &Stream{
		cmds: make(chan command, 64),
		done: make(chan struct{}),
	}
	go s.loop()
	return
}

func (s *Stream) loop() {
	defer close(s.done)
	for cmd := range s.cmds {

		if cmd.barrier != nil {
			close(cmd.barrier)
			continue
		}

		err := cmd.run()

		s.mu.Lock()
		s.executed++
		if err != nil && s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
}

func (s *Stream) submit(cmd command) error {
	s.closing.RLock()
	defer s.closing.RUnlock()
	if s.closed {
		return ErrClosed
	}
	s.cmds <- cmd
	return nil
}

// Submit enqueues run and returns without waiting for its execution.
// The first error returned by a command is reported by [Stream.Synchronize].
// Returns [ErrClosed] if the stream is closed.
func (s *Stream) Submit(run func() error) error {
	return s.submit(command{run: run})
}

// Synchronize blocks until all the commands submitted before the call have been
// executed, and returns and clears the first error they returned.
func (s *Stream) Synchronize() (err error) {

	barrier := make(chan struct{})
	if err = s.submit(command{barrier: barrier}); err != nil {
		return
	}
	<-barrier

	s.mu.Lock()
	defer s.mu.Unlock()
	err, s.err = s.err, nil
	return
}

// Executed returns the number of commands executed so far.
func (s *Stream) Executed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

func (s *Stream) close() {

	s.closing.Lock()
	if s.closed {
		s.closing.Unlock()
		return
	}
	s.closed = true
	close(s.cmds)
	s.closing.Unlock()

	<-s.done
}
