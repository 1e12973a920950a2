package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/set-night/jewelbot/internal/conversation"
	"github.com/set-night/jewelbot/internal/domain"
)

const NoMatchesMessage = "No matching pieces found. Try describing the style differently."

// ImageResolver turns a product image locator into a fetchable URL.
type ImageResolver func(locator string) string

// Presenter mirrors a session's bot-side transcript into a Telegram chat
// and drives the typing indicator from the sequencer status.
type Presenter struct {
	ctx     context.Context
	api     API
	chatID  int64
	resolve ImageResolver

	mu      sync.Mutex
	next    int
	pending map[int]domain.ChatMessage

	typingMu     sync.Mutex
	typingCancel context.CancelFunc
}

func NewPresenter(ctx context.Context, api API, chatID int64, resolve ImageResolver) *Presenter {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	return &Presenter{
		ctx:     ctx,
		api:     api,
		chatID:  chatID,
		resolve: resolve,
		pending: make(map[int]domain.ChatMessage),
	}
}

// Attach subscribes to the session. Entries already in the log are not
// rendered. The returned func detaches and stops the typing indicator.
func (p *Presenter) Attach(s *conversation.Session) (detach func()) {
	p.mu.Lock()
	p.next = s.Log.Len()
	p.mu.Unlock()

	offLog := s.Log.Subscribe(p.OnEntry)
	offStatus := s.Sequencer.Subscribe(p.OnStatus)
	return func() {
		offLog()
		offStatus()
		p.stopTyping()
	}
}

// OnEntry renders log entries strictly in index order even when appends
// from different goroutines notify out of order.
func (p *Presenter) OnEntry(e conversation.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Index < p.next {
		return
	}
	p.pending[e.Index] = e.Message
	for {
		msg, ok := p.pending[p.next]
		if !ok {
			return
		}
		delete(p.pending, p.next)
		p.next++
		p.render(msg)
	}
}

func (p *Presenter) render(msg domain.ChatMessage) {
	if msg.Sender != domain.SenderBot {
		return
	}
	var err error
	switch msg.Kind {
	case domain.KindText:
		err = SendLongMessage(p.ctx, p.api, p.chatID, msg.Text, nil)
	case domain.KindProductBatch:
		err = p.renderProducts(msg.Products)
	}
	if err != nil {
		slog.Error("render transcript entry", "chat_id", p.chatID, "kind", msg.Kind, "error", err)
	}
}

func (p *Presenter) renderProducts(products []domain.Product) error {
	if len(products) == 0 {
		return SendPlain(p.ctx, p.api, p.chatID, NoMatchesMessage, nil)
	}
	var errs []error
	for _, prod := range products {
		if err := p.renderProduct(prod); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("render %d of %d products: %w", len(errs), len(products), errs[0])
	}
	return nil
}

func (p *Presenter) renderProduct(prod domain.Product) error {
	imageURL := ""
	if prod.ImageLocator != "" {
		imageURL = p.resolve(prod.ImageLocator)
	}
	caption := ProductCaption(prod)
	markup := Markup(ProductKeyboard(prod.ID, imageURL))

	if imageURL != "" {
		err := SendPhotoURL(p.ctx, p.api, p.chatID, imageURL, caption, markup)
		if err == nil {
			return nil
		}
		slog.Warn("product photo failed, sending text", "product_id", prod.ID, "error", err)
	}
	return SendPlain(p.ctx, p.api, p.chatID, caption, markup)
}

// OnStatus keeps the chat action running while the sequencer shows any
// indicator.
func (p *Presenter) OnStatus(st conversation.Status) {
	if st.Indicator == conversation.IndicatorNone {
		p.stopTyping()
		return
	}
	p.typingMu.Lock()
	defer p.typingMu.Unlock()
	if p.typingCancel == nil {
		p.typingCancel = StartTyping(p.ctx, p.api, p.chatID)
	}
}

func (p *Presenter) stopTyping() {
	p.typingMu.Lock()
	defer p.typingMu.Unlock()
	if p.typingCancel != nil {
		p.typingCancel()
		p.typingCancel = nil
	}
}

// ProductCaption formats a product for a photo caption or text card.
func ProductCaption(prod domain.Product) string {
	var b strings.Builder
	b.WriteString(prod.Name)
	if prod.Description != "" {
		b.WriteString("\n")
		b.WriteString(prod.Description)
	}
	if prod.Price.Valid {
		b.WriteString("\nPrice: ")
		b.WriteString(prod.Price.Decimal.StringFixed(2))
	}
	return b.String()
}

// CartSummary renders the cart listing shown by /cart.
func CartSummary(items []domain.CartItem, total string) string {
	if len(items) == 0 {
		return "Your selection is empty."
	}
	var b strings.Builder
	b.WriteString("Selected pieces:\n")
	priced := false
	for i, item := range items {
		fmt.Fprintf(&b, "\n%d. %s", i+1, item.Name)
		if item.Price.Valid {
			fmt.Fprintf(&b, " (%s)", item.Price.Decimal.StringFixed(2))
			priced = true
		}
	}
	if priced {
		fmt.Fprintf(&b, "\n\nTotal: %s", total)
	}
	return b.String()
}
