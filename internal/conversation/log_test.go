package conversation

import (
	"testing"

	"github.com/set-night/jewelbot/internal/domain"
)

func TestMessageLogAppendOrder(t *testing.T) {
	l := NewMessageLog()

	for i, text := range []string{"a", "b", "c"} {
		if idx := l.Append(domain.UserText(text)); idx != i {
			t.Errorf("Append(%q) index = %d, want %d", text, idx, i)
		}
	}

	snap := l.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(Snapshot()) = %d, want 3", len(snap))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap[i].Text != want {
			t.Errorf("snap[%d].Text = %q, want %q", i, snap[i].Text, want)
		}
	}
}

func TestMessageLogSnapshotIsolation(t *testing.T) {
	l := NewMessageLog()
	products := []domain.Product{product("p1", "Ring A")}
	l.Append(domain.BotProducts(products))

	// Mutating the caller's slice must not reach the log.
	products[0].Name = "changed"

	snap := l.Snapshot()
	if snap[0].Products[0].Name != "Ring A" {
		t.Errorf("log entry mutated through caller slice: %q", snap[0].Products[0].Name)
	}

	snap[0].Products[0].Name = "changed again"
	if got := l.Snapshot()[0].Products[0].Name; got != "Ring A" {
		t.Errorf("log entry mutated through snapshot: %q", got)
	}
}

func TestMessageLogSnapshotNotStale(t *testing.T) {
	l := NewMessageLog()
	l.Append(domain.UserText("first"))
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	l.Append(domain.BotText("second"))
	snap := l.Snapshot()
	if len(snap) != 2 || snap[1].Text != "second" {
		t.Errorf("Snapshot() = %+v, want both entries", snap)
	}
}

func TestMessageLogSubscribe(t *testing.T) {
	l := NewMessageLog()
	var got []Entry
	unsubscribe := l.Subscribe(func(e Entry) { got = append(got, e) })

	l.Append(domain.UserText("one"))
	l.Append(domain.BotText("two"))
	unsubscribe()
	l.Append(domain.BotText("three"))

	if len(got) != 2 {
		t.Fatalf("observer saw %d entries, want 2", len(got))
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("indices = %d,%d, want 0,1", got[0].Index, got[1].Index)
	}
	if got[1].Message.Sender != domain.SenderBot {
		t.Errorf("second sender = %q, want bot", got[1].Message.Sender)
	}
}
