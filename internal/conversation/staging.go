package conversation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/set-night/jewelbot/internal/domain"
)

// PreviewStore creates and releases the transient preview resources that
// back staged attachments.
type PreviewStore interface {
	Create(f domain.FileHandle) (string, error)
	Release(ref string) error
}

type StagingOption func(*Staging)

// WithLimit caps the number of attachments that may be staged at once.
// Zero means unlimited.
func WithLimit(n int) StagingOption {
	return func(s *Staging) { s.limit = n }
}

// WithIDFunc replaces the uuid id generator.
func WithIDFunc(fn func() string) StagingOption {
	return func(s *Staging) { s.newID = fn }
}

// Staging owns the attachments a user has added but not yet sent. Each
// attachment owns exactly one preview, released exactly once when the
// attachment leaves the set.
type Staging struct {
	mu    sync.Mutex
	store PreviewStore
	items []domain.PendingAttachment
	limit int
	newID func() string
	obs   observers[[]domain.PendingAttachment]
}

func NewStaging(store PreviewStore, opts ...StagingOption) *Staging {
	s := &Staging{
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stage appends files in input order. The call is all-or-nothing: on error
// previews created so far are released and nothing is staged.
func (s *Staging) Stage(files []domain.FileHandle) ([]domain.PendingAttachment, error) {
	if len(files) == 0 {
		return nil, nil
	}
	for _, f := range files {
		if f == nil {
			return nil, domain.ErrNilFile
		}
	}

	s.mu.Lock()
	if s.limit > 0 && len(s.items)+len(files) > s.limit {
		s.mu.Unlock()
		return nil, fmt.Errorf("stage %d files with %d staged (limit %d): %w",
			len(files), len(s.items), s.limit, domain.ErrTooManyAttachments)
	}

	taken := make(map[string]bool, len(s.items)+len(files))
	for _, it := range s.items {
		taken[it.ID] = true
	}

	added := make([]domain.PendingAttachment, 0, len(files))
	for _, f := range files {
		ref, err := s.store.Create(f)
		if err != nil {
			s.mu.Unlock()
			s.release(added)
			return nil, fmt.Errorf("create preview for %q: %w", f.Name(), err)
		}
		id := s.uniqueID(taken)
		taken[id] = true
		added = append(added, domain.PendingAttachment{
			ID:      id,
			File:    f,
			Preview: ref,
			Name:    f.Name(),
			Size:    f.Size(),
		})
	}
	s.items = append(s.items, added...)
	snapshot := s.listLocked()
	s.mu.Unlock()

	s.obs.publish(snapshot)
	return append([]domain.PendingAttachment(nil), added...), nil
}

func (s *Staging) uniqueID(taken map[string]bool) string {
	for {
		id := s.newID()
		if !taken[id] {
			return id
		}
	}
}

// Remove drops the attachment with the given id and releases its preview.
// Unknown ids are ignored.
func (s *Staging) Remove(id string) error {
	return s.RemoveAll([]string{id})
}

// RemoveAll drops every listed attachment that is still staged.
func (s *Staging) RemoveAll(ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.Lock()
	var removed []domain.PendingAttachment
	kept := s.items[:0:0]
	for _, it := range s.items {
		if want[it.ID] {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.items = kept
	snapshot := s.listLocked()
	s.mu.Unlock()

	err := s.release(removed)
	s.obs.publish(snapshot)
	return err
}

// Clear releases every preview and empties the set.
func (s *Staging) Clear() error {
	s.mu.Lock()
	removed := s.items
	s.items = nil
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}
	err := s.release(removed)
	s.obs.publish(nil)
	return err
}

func (s *Staging) release(items []domain.PendingAttachment) error {
	var errs []error
	for _, it := range items {
		if err := s.store.Release(it.Preview); err != nil {
			errs = append(errs, fmt.Errorf("release preview %s: %w", it.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Get returns the staged attachment with the given id.
func (s *Staging) Get(id string) (domain.PendingAttachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.PendingAttachment{}, domain.ErrAttachmentNotFound
}

func (s *Staging) List() []domain.PendingAttachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Staging) listLocked() []domain.PendingAttachment {
	return append([]domain.PendingAttachment(nil), s.items...)
}

func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn to receive the staged set after every change.
func (s *Staging) Subscribe(fn func([]domain.PendingAttachment)) (unsubscribe func()) {
	return s.obs.add(fn)
}
