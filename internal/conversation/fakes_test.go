package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

// fakePreviews counts preview lifecycles and flags double releases.
type fakePreviews struct {
	mu        sync.Mutex
	next      int
	live      map[string]bool
	released  map[string]int
	failAfter int
}

func newFakePreviews() *fakePreviews {
	return &fakePreviews{live: map[string]bool{}, released: map[string]int{}, failAfter: -1}
}

func (f *fakePreviews) Create(file domain.FileHandle) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter == 0 {
		return "", errors.New("disk full")
	}
	if f.failAfter > 0 {
		f.failAfter--
	}
	f.next++
	ref := fmt.Sprintf("preview-%d-%s", f.next, file.Name())
	f.live[ref] = true
	return ref, nil
}

func (f *fakePreviews) Release(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released[ref]++
	if !f.live[ref] {
		return domain.ErrPreviewReleased
	}
	delete(f.live, ref)
	return nil
}

func (f *fakePreviews) Live() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakePreviews) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

func (f *fakePreviews) doubleReleases() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for ref, n := range f.released {
		if n != 1 {
			out = append(out, ref)
		}
	}
	return out
}

type fakeRemote struct {
	mu        sync.Mutex
	calls     []string
	uploadID  string
	products  []domain.Product
	uploadErr error
	recErr    error

	gotFiles    []domain.FileHandle
	gotUploadID string
	gotRefine   string
	gotClient   string
	gotNotes    string

	// block, when set, parks Upload until it is closed.
	block chan struct{}
}

func (f *fakeRemote) Upload(ctx context.Context, files []domain.FileHandle, clientName, notes string) (*domain.UploadResult, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "upload")
	f.gotFiles = files
	f.gotClient = clientName
	f.gotNotes = notes
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &domain.UploadResult{UploadID: f.uploadID, Message: "ok"}, nil
}

func (f *fakeRemote) Recommend(ctx context.Context, uploadID, refineText string) (*domain.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "recommend")
	f.gotUploadID = uploadID
	f.gotRefine = refineText
	if f.recErr != nil {
		return nil, f.recErr
	}
	return &domain.Recommendation{Products: f.products, Message: "Recommendations ready."}, nil
}

func (f *fakeRemote) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// manualScheduler holds continuations until run is called.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
	delays  []time.Duration
}

func (m *manualScheduler) Schedule(delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, fn)
	m.delays = append(m.delays, delay)
}

func (m *manualScheduler) run() {
	m.mu.Lock()
	fns := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func file(name string) domain.FileHandle {
	return domain.NewMemoryFile(name, "image/jpeg", []byte("img:"+name))
}

func product(id, name string) domain.Product {
	return domain.Product{ID: id, Name: name, Description: name + " desc", ImageLocator: "/samples/" + id + ".jpg"}
}
