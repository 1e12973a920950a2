package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/domain"
)

// SessionHook runs for every new session before it is handed out. The
// returned func, if any, runs when the session is closed.
type SessionHook func(chatID int64, sess *conversation.Session) (release func())

type chatSession struct {
	sess    *conversation.Session
	release func()
}

// ChatSessionService keeps one conversation per Telegram chat for as long
// as the process lives.
type ChatSessionService struct {
	deps conversation.SessionDeps

	mu       sync.Mutex
	sessions map[int64]chatSession
	onCreate SessionHook
}

func NewChatSessionService(deps conversation.SessionDeps) *ChatSessionService {
	return &ChatSessionService{
		deps:     deps,
		sessions: make(map[int64]chatSession),
	}
}

func (s *ChatSessionService) OnCreate(fn SessionHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreate = fn
}

func (s *ChatSessionService) FindOrCreate(chatID int64) *conversation.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cs, ok := s.sessions[chatID]; ok {
		cs.sess.Touch()
		return cs.sess
	}
	return s.createLocked(chatID)
}

func (s *ChatSessionService) createLocked(chatID int64) *conversation.Session {
	cs := chatSession{sess: conversation.NewSession(s.deps)}
	if s.onCreate != nil {
		cs.release = s.onCreate(chatID, cs.sess)
	}
	s.sessions[chatID] = cs
	return cs.sess
}

func (s *ChatSessionService) Get(chatID int64) (*conversation.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[chatID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return cs.sess, nil
}

// Reset drops the chat's conversation and starts a fresh one.
func (s *ChatSessionService) Reset(chatID int64) *conversation.Session {
	s.mu.Lock()
	old, had := s.sessions[chatID]
	delete(s.sessions, chatID)
	sess := s.createLocked(chatID)
	s.mu.Unlock()

	if had {
		closeSession(chatID, old)
	}
	return sess
}

// CleanupIdle closes sessions without activity for longer than maxIdle and
// returns how many were dropped. Sessions with a send in flight are kept.
func (s *ChatSessionService) CleanupIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	stale := make(map[int64]chatSession)
	for chatID, cs := range s.sessions {
		if cs.sess.IdleFor() > maxIdle && !cs.sess.Sequencer.Status().State.InFlight() {
			stale[chatID] = cs
			delete(s.sessions, chatID)
		}
	}
	s.mu.Unlock()

	for chatID, cs := range stale {
		closeSession(chatID, cs)
	}
	return len(stale)
}

func (s *ChatSessionService) CloseAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[int64]chatSession)
	s.mu.Unlock()

	for chatID, cs := range all {
		closeSession(chatID, cs)
	}
}

func (s *ChatSessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func closeSession(chatID int64, cs chatSession) {
	if cs.release != nil {
		cs.release()
	}
	if err := cs.sess.Close(); err != nil {
		slog.Warn("close session", "chat_id", chatID, "error", err)
	}
}
