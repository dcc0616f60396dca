// Package ingest feeds task-update tokens from background producers to the
// render loop.
//
// Producers (the demo ticker, the line reader, the file tail) each own a
// Sender and push into a shared unbounded Queue; Push never blocks. The
// render loop is the single consumer and polls with TryRecv once per frame.
package ingest

import (
	"errors"
	"sync"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

var (
	// ErrEmpty means no token is pending right now.
	ErrEmpty = errors.New("ingest: queue empty")
	// ErrDisconnected means the queue is drained and every sender has closed.
	ErrDisconnected = errors.New("ingest: all producers gone")
	// ErrSenderClosed is returned by Send after Close.
	ErrSenderClosed = errors.New("ingest: sender closed")
)

// Token is one unit of ingestion progress.
type Token struct {
	// Step selects a recipe mutation (taken modulo the recipe length).
	Step uint
	// Task, when set, is pushed as-is instead of applying a recipe step.
	Task *model.Task
	// Source names the producer, for logs.
	Source string
	// Line is the raw feed line the token came from, if any.
	Line string
}

// Queue is an unbounded multiple-producer/single-consumer FIFO.
type Queue struct {
	mu        sync.Mutex
	items     []Token
	head      int
	senders   int
	connected bool // at least one sender was ever registered
	pushed    uint64
}

// NewQueue returns an empty queue with no senders.
func NewQueue() *Queue {
	return &Queue{}
}

// NewSender registers a producer. The queue reports ErrDisconnected only
// after every registered sender has been closed and the backlog is drained.
func (q *Queue) NewSender(source string) *Sender {
	q.mu.Lock()
	q.senders++
	q.connected = true
	q.mu.Unlock()
	return &Sender{q: q, source: source}
}

func (q *Queue) push(tok Token) {
	q.mu.Lock()
	q.items = append(q.items, tok)
	q.pushed++
	q.mu.Unlock()
}

// TryRecv returns the oldest pending token without waiting.
func (q *Queue) TryRecv() (Token, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head < len(q.items) {
		tok := q.items[q.head]
		q.items[q.head] = Token{}
		q.head++
		// Reclaim the consumed prefix once it dominates the backing array.
		if q.head == len(q.items) {
			q.items = q.items[:0]
			q.head = 0
		} else if q.head > 64 && q.head*2 > len(q.items) {
			q.items = append(q.items[:0], q.items[q.head:]...)
			q.head = 0
		}
		return tok, nil
	}
	if q.connected && q.senders == 0 {
		return Token{}, ErrDisconnected
	}
	return Token{}, ErrEmpty
}

// Len returns the number of pending tokens.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Pushed returns the total number of tokens ever pushed.
func (q *Queue) Pushed() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pushed
}

// Senders returns the number of open senders.
func (q *Queue) Senders() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.senders
}

// Sender is a producer's handle on a Queue.
type Sender struct {
	q      *Queue
	source string
	once   sync.Once
	mu     sync.Mutex
	closed bool
}

// Send enqueues tok without blocking. An empty tok.Source is filled with the
// sender's source name.
func (s *Sender) Send(tok Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSenderClosed
	}
	if tok.Source == "" {
		tok.Source = s.source
	}
	s.q.push(tok)
	return nil
}

// Close unregisters the sender. It is safe to call more than once.
func (s *Sender) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.q.mu.Lock()
		s.q.senders--
		s.q.mu.Unlock()
	})
}

// Source returns the producer name.
func (s *Sender) Source() string {
	return s.source
}
