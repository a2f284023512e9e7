package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoticeKind distinguishes success from error notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier timeouts. Errors linger a little longer.
const (
	successNoticeTTL = 3 * time.Second
	errorNoticeTTL   = 5 * time.Second
)

// Notice is the single-slot transient message shown after a mutating
// operation resolves.
type Notice struct {
	ID   uuid.UUID  `json:"id"`
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// Notifier holds at most one pending notice. Setting a new notice replaces
// the pending one; each notice self-clears after its own timeout. The clear
// is keyed to the notice instance it was scheduled for, so a timer belonging
// to a replaced notice never wipes its successor.
type Notifier struct {
	mu         sync.Mutex
	current    *Notice
	successTTL time.Duration
	errorTTL   time.Duration
	subs       map[chan Notice]struct{}
}

// NewNotifier creates a Notifier with the standard 3s/5s timeouts.
func NewNotifier() *Notifier {
	return &Notifier{
		successTTL: successNoticeTTL,
		errorTTL:   errorNoticeTTL,
		subs:       make(map[chan Notice]struct{}),
	}
}

// Success publishes a success notice.
func (n *Notifier) Success(text string) { n.set(NoticeSuccess, text, n.successTTL) }

// Error publishes an error notice.
func (n *Notifier) Error(text string) { n.set(NoticeError, text, n.errorTTL) }

func (n *Notifier) set(kind NoticeKind, text string, ttl time.Duration) {
	notice := Notice{ID: uuid.New(), Kind: kind, Text: text}

	n.mu.Lock()
	n.current = &notice
	for ch := range n.subs {
		select {
		case ch <- notice:
		default: // slow subscriber, drop rather than block
		}
	}
	n.mu.Unlock()

	time.AfterFunc(ttl, func() { n.clear(notice.ID) })
}

// clear removes the pending notice only if it is still the one the timer was
// armed for.
func (n *Notifier) clear(id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.ID == id {
		n.current = nil
	}
}

// Current returns the pending notice, or nil when the slot is empty.
func (n *Notifier) Current() *Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

// Subscribers returns the number of registered notice channels.
func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Subscribe registers a channel receiving every published notice. The
// returned func unsubscribes.
func (n *Notifier) Subscribe() (<-chan Notice, func()) {
	ch := make(chan Notice, 8)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	return ch, func() {
		n.mu.Lock()
		delete(n.subs, ch)
		n.mu.Unlock()
	}
}
