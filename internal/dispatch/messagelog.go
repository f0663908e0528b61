package dispatch

import (
	"sync"
	"time"
)

// Message is one inbound message as seen by the dispatcher.
type Message struct {
	Topic      string
	Payload    string
	ReceivedAt time.Time
}

// MessageLog keeps the most recent messages for the message viewer.
// It is a fixed-size ring; a size of 0 keeps nothing.
type MessageLog struct {
	mu      sync.RWMutex
	entries []Message
	next    int
	full    bool
}

// NewMessageLog creates a log holding at most size messages.
func NewMessageLog(size int) *MessageLog {
	if size < 0 {
		size = 0
	}
	return &MessageLog{entries: make([]Message, size)}
}

// Add records a message, evicting the oldest when full.
func (l *MessageLog) Add(topic, payload string) {
	if len(l.entries) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[l.next] = Message{Topic: topic, Payload: payload, ReceivedAt: time.Now()}
	l.next++
	if l.next == len(l.entries) {
		l.next = 0
		l.full = true
	}
}

// Entries returns the logged messages, oldest first.
func (l *MessageLog) Entries() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.full {
		out := make([]Message, l.next)
		copy(out, l.entries[:l.next])
		return out
	}
	out := make([]Message, 0, len(l.entries))
	out = append(out, l.entries[l.next:]...)
	out = append(out, l.entries[:l.next]...)
	return out
}

// Len returns the number of logged messages.
func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.full {
		return len(l.entries)
	}
	return l.next
}
