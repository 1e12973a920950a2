package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/set-night/jewelbot/internal/domain"
)

const (
	FailureMessage  = "Sorry, something went wrong contacting the server."
	DefaultAckDelay = 800 * time.Millisecond
)

// Recommender is the remote capability pair a send drives.
type Recommender interface {
	Upload(ctx context.Context, files []domain.FileHandle, clientName, notes string) (*domain.UploadResult, error)
	Recommend(ctx context.Context, uploadID, refineText string) (*domain.Recommendation, error)
}

// Scheduler runs fn after delay without blocking the caller.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

type SchedulerFunc func(delay time.Duration, fn func())

func (f SchedulerFunc) Schedule(delay time.Duration, fn func()) { f(delay, fn) }

// TimerScheduler schedules continuations on runtime timers.
var TimerScheduler Scheduler = SchedulerFunc(func(delay time.Duration, fn func()) {
	time.AfterFunc(delay, fn)
})

type SequencerConfig struct {
	ClientName     string
	UploadNotes    string
	RequestTimeout time.Duration
	AckDelay       time.Duration
	Scheduler      Scheduler
}

// Sequencer turns a user's send into the upload then recommend chain and
// records the outcome in the message log.
type Sequencer struct {
	log     *MessageLog
	staging *Staging
	cart    *SelectionCart
	remote  Recommender
	cfg     SequencerConfig

	mu    sync.Mutex
	state State
	acks  int
	obs   observers[Status]

	unsubscribe func()
}

func NewSequencer(log *MessageLog, staging *Staging, cart *SelectionCart, remote Recommender, cfg SequencerConfig) *Sequencer {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler
	}
	if cfg.AckDelay <= 0 {
		cfg.AckDelay = DefaultAckDelay
	}
	s := &Sequencer{
		log:     log,
		staging: staging,
		cart:    cart,
		remote:  remote,
		cfg:     cfg,
	}
	s.unsubscribe = staging.Subscribe(s.onStagingChange)
	if staging.Len() > 0 {
		s.state = StateComposing
	}
	return s
}

func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Sequencer) statusLocked() Status {
	return Status{State: s.state, Indicator: indicatorFor(s.state, s.acks)}
}

// Subscribe registers fn to be called on every status transition.
func (s *Sequencer) Subscribe(fn func(Status)) (unsubscribe func()) {
	return s.obs.add(fn)
}

func (s *Sequencer) setState(state State) {
	s.mu.Lock()
	s.state = state
	st := s.statusLocked()
	s.mu.Unlock()
	s.obs.publish(st)
}

func (s *Sequencer) publishStatus() {
	s.obs.publish(s.Status())
}

func (s *Sequencer) onStagingChange(items []domain.PendingAttachment) {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateComposing {
		s.mu.Unlock()
		return
	}
	next := StateIdle
	if len(items) > 0 {
		next = StateComposing
	}
	if next == s.state {
		s.mu.Unlock()
		return
	}
	s.state = next
	st := s.statusLocked()
	s.mu.Unlock()
	s.obs.publish(st)
}

// Send submits text together with everything currently staged. A blank
// text with nothing staged returns domain.ErrNothingToSend and changes
// nothing. While another send is in flight it returns domain.ErrSendInFlight.
//
// Remote failures are recorded in the log as a single generic bot message
// and returned to the caller. Sent attachments are released and the
// indicator cleared on every path.
func (s *Sequencer) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	attachments := s.staging.List()
	if text == "" && len(attachments) == 0 {
		return domain.ErrNothingToSend
	}

	s.mu.Lock()
	if s.state.InFlight() {
		s.mu.Unlock()
		return domain.ErrSendInFlight
	}
	s.state = StateSending
	s.mu.Unlock()

	ids := make([]string, len(attachments))
	files := make([]domain.FileHandle, len(attachments))
	refs := make([]domain.ImageRef, len(attachments))
	for i, a := range attachments {
		ids[i] = a.ID
		files[i] = a.File
		refs[i] = domain.ImageRef{Preview: a.Preview, Name: a.Name}
	}
	defer s.finish(ids)

	if len(attachments) > 0 {
		s.log.Append(domain.UserImages(refs))
	}
	if text != "" {
		s.log.Append(domain.UserText(text))
	}
	s.publishStatus()

	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	uploadID := ""
	if len(files) > 0 {
		s.setState(StateAwaitingUpload)
		res, err := s.remote.Upload(ctx, files, s.cfg.ClientName, s.cfg.UploadNotes)
		if err != nil {
			return s.fail(fmt.Errorf("upload references: %w", err))
		}
		if res != nil {
			uploadID = res.UploadID
		}
	}

	s.setState(StateAwaitingRecommendation)
	rec, err := s.remote.Recommend(ctx, uploadID, text)
	if err != nil {
		return s.fail(fmt.Errorf("recommend: %w", err))
	}

	var products []domain.Product
	if rec != nil {
		products = rec.Products
	}
	s.log.Append(domain.BotProducts(products))
	s.setState(StateSettledSuccess)
	return nil
}

func (s *Sequencer) fail(err error) error {
	s.log.Append(domain.BotText(FailureMessage))
	s.setState(StateSettledError)
	return err
}

func (s *Sequencer) finish(ids []string) {
	if err := s.staging.RemoveAll(ids); err != nil {
		slog.Warn("release sent attachments", "error", err)
	}
	next := StateIdle
	if s.staging.Len() > 0 {
		next = StateComposing
	}
	s.setState(next)
}

// SelectProduct adds p to the cart, records the selection and schedules
// the bot's acknowledgement. It reports whether the cart changed.
func (s *Sequencer) SelectProduct(p domain.Product) bool {
	added := s.cart.Add(domain.NewCartItem(p))
	s.log.Append(domain.UserText("Selected: " + p.Name))

	s.mu.Lock()
	s.acks++
	st := s.statusLocked()
	s.mu.Unlock()
	s.obs.publish(st)

	s.cfg.Scheduler.Schedule(s.cfg.AckDelay, func() {
		s.log.Append(domain.BotText(fmt.Sprintf("Got it, added %s. Want more like this?", p.Name)))
		s.mu.Lock()
		s.acks--
		st := s.statusLocked()
		s.mu.Unlock()
		s.obs.publish(st)
	})
	return added
}

// Close detaches the sequencer from its staging set.
func (s *Sequencer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
