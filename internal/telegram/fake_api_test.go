package telegram

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type sentCall struct {
	method  string
	text    string
	photo   string
	markup  models.ReplyMarkup
	parse   models.ParseMode
	chatID  any
	caption string
}

type fakeAPI struct {
	mu           sync.Mutex
	calls        []sentCall
	actions      int
	failPhoto    bool
	failMarkdown bool
}

func (f *fakeAPI) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMarkdown && params.ParseMode != "" {
		return nil, errors.New("can't parse entities")
	}
	f.calls = append(f.calls, sentCall{
		method: "message",
		text:   params.Text,
		markup: params.ReplyMarkup,
		parse:  params.ParseMode,
		chatID: params.ChatID,
	})
	return &models.Message{ID: len(f.calls)}, nil
}

func (f *fakeAPI) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPhoto {
		return nil, errors.New("wrong file identifier")
	}
	call := sentCall{method: "photo", caption: params.Caption, markup: params.ReplyMarkup, chatID: params.ChatID}
	if s, ok := params.Photo.(*models.InputFileString); ok {
		call.photo = s.Data
	}
	f.calls = append(f.calls, call)
	return &models.Message{ID: len(f.calls)}, nil
}

func (f *fakeAPI) SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions++
	return true, nil
}

func (f *fakeAPI) sent() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}
