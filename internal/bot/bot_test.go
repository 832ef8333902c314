package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Alias1177/Lucent/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.texts = append(f.texts, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type fakeClient struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	calls   int
	started chan string
}

func newFakeClient() *fakeClient {
	return &fakeClient{gates: make(map[string]chan struct{}), started: make(chan string, 8)}
}

func (f *fakeClient) Predict(ctx context.Context, nctid string) (*models.PredictResponse, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[nctid]
	f.mu.Unlock()

	f.started <- nctid
	if gate != nil {
		<-gate
	}

	switch {
	case nctid == "NCT00000000":
		return &models.PredictResponse{Error: []byte(`"not found"`)}, nil
	case strings.HasPrefix(nctid, "NCT"):
		p, u := 0.81, 0.05
		return &models.PredictResponse{NCTID: nctid, Deterministic: &p, Uncertainty: &u}, nil
	}
	return nil, errors.New("connection refused")
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestLookupReply(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, newFakeClient(), nil)

	b.HandleMessage(context.Background(), textMessage(1, "NCT00072579"))
	b.Wait()

	sent := sender.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0], "Analyzing clinical data for NCT00072579")
	assert.Contains(t, sent[1], "81.0%")
	assert.Contains(t, sent[1], "High Probability")
}

func TestBlankInputRejectedLocally(t *testing.T) {
	sender := &fakeSender{}
	client := newFakeClient()
	b := New(sender, client, nil)

	b.HandleMessage(context.Background(), textMessage(1, "   "))
	b.Wait()

	assert.Equal(t, []string{"Analysis error: invalid identifier"}, sender.sent())
	assert.Zero(t, client.calls)
}

func TestTrialNotFound(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, newFakeClient(), nil)

	b.HandleMessage(context.Background(), textMessage(1, "NCT00000000"))
	b.Wait()

	sent := sender.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "trial not found")
}

func TestSupersededResultIsNotSent(t *testing.T) {
	sender := &fakeSender{}
	client := newFakeClient()
	gate := make(chan struct{})
	client.gates["NCT0000000A"] = gate
	b := New(sender, client, nil)

	b.HandleMessage(context.Background(), textMessage(1, "NCT0000000A"))
	<-client.started
	b.HandleMessage(context.Background(), textMessage(1, "NCT0000000B"))
	<-client.started

	// let B's reply go out before A resolves
	require.Eventually(t, func() bool { return len(sender.sent()) >= 3 }, time.Second, 5*time.Millisecond)
	close(gate)
	b.Wait()

	sent := sender.sent()
	require.Len(t, sent, 3)
	assert.Contains(t, sent[2], "NCT0000000B")
	for _, s := range sent {
		assert.NotContains(t, s, "Trial ID: NCT0000000A")
	}
}

func TestHistoryCommand(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, newFakeClient(), nil)

	b.HandleMessage(context.Background(), commandMessage(1, "/history"))
	b.HandleMessage(context.Background(), textMessage(1, "NCT00072579"))
	b.Wait()
	b.HandleMessage(context.Background(), textMessage(1, ButtonHistory))

	sent := sender.sent()
	require.Len(t, sent, 4)
	assert.Equal(t, "No recent analysis", sent[0])
	assert.Contains(t, sent[3], "Recent Analysis")
	assert.Contains(t, sent[3], "NCT00072579")
}

func TestSessionsArePerChat(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, newFakeClient(), nil)

	b.HandleMessage(context.Background(), textMessage(1, "NCT00072579"))
	b.Wait()

	assert.Len(t, b.session(1).History(), 1)
	assert.Empty(t, b.session(2).History())
}

func TestCommands(t *testing.T) {
	tests := []struct {
		text     string
		contains string
	}{
		{"/start", "Welcome to Lucent"},
		{"/about", "v0.2.0"},
		{"/tiers", "High Probability"},
		{"/unknown", "Unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			sender := &fakeSender{}
			b := New(sender, newFakeClient(), nil)

			b.HandleMessage(context.Background(), commandMessage(7, tt.text))

			sent := sender.sent()
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.contains)
		})
	}
}

func TestPredictCommand(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, newFakeClient(), nil)

	b.HandleMessage(context.Background(), commandMessage(1, "/predict NCT01721746"))
	b.Wait()

	sent := sender.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "NCT01721746")
}
