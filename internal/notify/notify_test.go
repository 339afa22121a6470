// ABOUTME: Tests for the dispatcher and Telegram channel.
// ABOUTME: Uses a fake channel and a fake bot sender.
package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/healhub/internal/logging"
)

type fakeChannel struct {
	perm     Permission
	requestP Permission
	sendErr  error
	panics   bool
	sent     []string
}

func (f *fakeChannel) Permission() Permission { return f.perm }

func (f *fakeChannel) RequestPermission(context.Context) (Permission, error) {
	if f.panics {
		panic("boom")
	}
	f.perm = f.requestP
	return f.perm, nil
}

func (f *fakeChannel) Send(_ context.Context, title string, _ Options) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, title)
	return nil
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name         string
		channel      Channel
		wantNative   bool
		wantFallback bool
	}{
		{"unsupported", nil, false, true},
		{"granted", &fakeChannel{perm: Granted}, true, false},
		{"denied", &fakeChannel{perm: Denied}, false, true},
		{"default", &fakeChannel{perm: Default}, false, true},
		{"send error", &fakeChannel{perm: Granted, sendErr: errors.New("offline")}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(tt.channel, logging.Discard())
			fellBack := false
			got := d.Notify(context.Background(), "Take meds", Options{Body: "Aspirin - 100mg"}, func(title string, opts Options) {
				fellBack = true
				assert.Equal(t, "Take meds", title)
				assert.Equal(t, "Aspirin - 100mg", opts.Body)
			})
			assert.Equal(t, tt.wantNative, got)
			assert.Equal(t, tt.wantFallback, fellBack)
		})
	}
}

func TestRequestPermission(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Unsupported, NewDispatcher(nil, logging.Discard()).RequestPermission(ctx))

	ch := &fakeChannel{perm: Default, requestP: Granted}
	d := NewDispatcher(ch, logging.Discard())
	assert.Equal(t, Granted, d.RequestPermission(ctx))
	assert.Equal(t, Granted, d.RequestPermission(ctx), "idempotent once granted")

	panicky := NewDispatcher(&fakeChannel{perm: Default, panics: true}, logging.Discard())
	assert.Equal(t, Denied, panicky.RequestPermission(ctx))
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramChannel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, Unsupported, NewTelegramChannel("", 0).Permission())

	noChat := NewTelegramChannel("token", 0)
	assert.Equal(t, Default, noChat.Permission())
	p, err := noChat.RequestPermission(ctx)
	assert.Error(t, err)
	assert.Equal(t, Denied, p)

	bot := &fakeBot{}
	ch := NewTelegramChannel("token", 42)
	ch.newBot = func(string) (botSender, error) { return bot, nil }

	require.Error(t, ch.Send(ctx, "x", Options{}), "not connected yet")

	p, err = ch.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, Granted, p)

	require.NoError(t, ch.Send(ctx, "Reminder", Options{Body: "Aspirin - 100mg"}))
	require.Len(t, bot.sent, 1)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "Reminder\nAspirin - 100mg", msg.Text)
}

func TestTelegramChannelBadToken(t *testing.T) {
	ch := NewTelegramChannel("bad", 42)
	ch.newBot = func(string) (botSender, error) { return nil, errors.New("unauthorized") }

	p, err := ch.RequestPermission(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Denied, p)
}
