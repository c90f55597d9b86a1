// Package lifecycle tracks one request surface through
// idle → pending → succeeded|failed.
//
// Every submission gets a ticket from a monotonic counter. Only the most
// recently issued ticket can resolve the state; answers to older submissions
// are dropped, so overlapping requests never race on the visible result.
package lifecycle

import (
	"strings"
	"sync"
	"time"
)

type Phase int

const (
	Idle Phase = iota
	Pending
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// View is the region a renderer should show for a phase. Exactly one applies.
type View string

const (
	ViewPlaceholder View = "placeholder"
	ViewLoading     View = "loading"
	ViewResult      View = "result"
	ViewError       View = "error"
)

type Ticket uint64

const defaultFailure = "request failed"

type Snapshot[T any] struct {
	Phase     Phase     `json:"phase"`
	Result    T         `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	Ticket    Ticket    `json:"ticket"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s Snapshot[T]) View() View {
	switch s.Phase {
	case Pending:
		return ViewLoading
	case Succeeded:
		return ViewResult
	case Failed:
		return ViewError
	default:
		return ViewPlaceholder
	}
}

type State[T any] struct {
	mu        sync.Mutex
	snap      Snapshot[T]
	issued    Ticket
	observers []func(Snapshot[T])
	now       func() time.Time
}

func New[T any]() *State[T] {
	s := &State[T]{now: time.Now}
	s.snap.UpdatedAt = s.now()
	return s
}

// Observe registers fn to run after every transition, in transition order.
// fn runs with the state locked and must not call back into it.
func (s *State[T]) Observe(fn func(Snapshot[T])) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Submit starts a new submission. From Idle, Succeeded or Failed it moves to
// Pending and drops the previous result or error. While already Pending the
// phase is unchanged and only the ticket advances.
func (s *State[T]) Submit() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	if s.snap.Phase == Pending {
		s.snap.Ticket = s.issued
		return s.issued
	}
	s.snap = Snapshot[T]{Phase: Pending, Ticket: s.issued, UpdatedAt: s.now()}
	s.notify()
	return s.issued
}

// Succeed resolves ticket t with result. It reports false when t is stale or
// the state is not pending.
func (s *State[T]) Succeed(t Ticket, result T) bool {
	return s.resolve(t, func(snap *Snapshot[T]) {
		snap.Phase = Succeeded
		snap.Result = result
	})
}

// Fail resolves ticket t with a user-facing message.
func (s *State[T]) Fail(t Ticket, message string) bool {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = defaultFailure
	}
	return s.resolve(t, func(snap *Snapshot[T]) {
		snap.Phase = Failed
		snap.Error = msg
	})
}

func (s *State[T]) resolve(t Ticket, apply func(*Snapshot[T])) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.Phase != Pending || t != s.issued {
		return false
	}
	next := Snapshot[T]{Ticket: t, UpdatedAt: s.now()}
	apply(&next)
	s.snap = next
	s.notify()
	return true
}

func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *State[T]) notify() {
	for _, fn := range s.observers {
		fn(s.snap)
	}
}
