package conversation

import (
	"sync"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

const Greeting = "Hi! Upload jewellery references or describe your client's style."

// Session is one user's conversation: transcript, staged attachments,
// cart and the sequencer that ties them together.
type Session struct {
	Log       *MessageLog
	Staging   *Staging
	Cart      *SelectionCart
	Sequencer *Sequencer

	mu         sync.Mutex
	lastActive time.Time
}

type SessionDeps struct {
	Previews       PreviewStore
	Remote         Recommender
	MaxAttachments int
	Sequencer      SequencerConfig
}

func NewSession(deps SessionDeps) *Session {
	log := NewMessageLog()
	staging := NewStaging(deps.Previews, WithLimit(deps.MaxAttachments))
	cart := NewSelectionCart()
	s := &Session{
		Log:        log,
		Staging:    staging,
		Cart:       cart,
		Sequencer:  NewSequencer(log, staging, cart, deps.Remote, deps.Sequencer),
		lastActive: time.Now(),
	}
	log.Append(domain.BotText(Greeting))
	return s
}

// Touch records user activity.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive)
}

// FindProduct looks the product up in the transcript, newest batch first.
func (s *Session) FindProduct(id string) (domain.Product, error) {
	entries := s.Log.Snapshot()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind != domain.KindProductBatch {
			continue
		}
		for _, p := range entries[i].Products {
			if p.ID == id {
				return p, nil
			}
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Close releases staged previews and detaches the sequencer.
func (s *Session) Close() error {
	s.Sequencer.Close()
	return s.Staging.Clear()
}
