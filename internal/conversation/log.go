package conversation

import (
	"sync"

	"github.com/set-night/jewelbot/internal/domain"
)

// Entry is a transcript message together with its position in the log.
type Entry struct {
	Index   int
	Message domain.ChatMessage
}

// MessageLog is the append-only transcript of a conversation. Entries are
// never reordered, edited or removed.
type MessageLog struct {
	mu      sync.RWMutex
	entries []domain.ChatMessage
	obs     observers[Entry]
}

func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds msg to the end of the log and returns its index.
func (l *MessageLog) Append(msg domain.ChatMessage) int {
	msg = msg.Clone()

	l.mu.Lock()
	idx := len(l.entries)
	l.entries = append(l.entries, msg)
	l.mu.Unlock()

	l.obs.publish(Entry{Index: idx, Message: msg.Clone()})
	return idx
}

// Snapshot returns a copy of every entry appended so far.
func (l *MessageLog) Snapshot() []domain.ChatMessage {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ChatMessage, len(l.entries))
	for i, m := range l.entries {
		out[i] = m.Clone()
	}
	return out
}

func (l *MessageLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Subscribe registers fn to be called after every append.
func (l *MessageLog) Subscribe(fn func(Entry)) (unsubscribe func()) {
	return l.obs.add(fn)
}
