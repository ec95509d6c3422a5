package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/eliseohh/runnercatcherbot/internal/config"
	"github.com/eliseohh/runnercatcherbot/internal/store"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	tele "gopkg.in/telebot.v3"
)

type sentMessage struct {
	ChatID string
	Text   string
	Markup tele.ReplyMarkup
}

// fakeAPI is a minimal Bot API that records sendMessage calls.
type fakeAPI struct {
	mu     sync.Mutex
	sent   []sentMessage
	failed bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
		http.NotFound(w, r)
		return
	}

	var params map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := sentMessage{
		ChatID: fmt.Sprint(params["chat_id"]),
		Text:   fmt.Sprint(params["text"]),
	}
	if raw, ok := params["reply_markup"].(string); ok {
		json.Unmarshal([]byte(raw), &msg.Markup)
	}

	f.mu.Lock()
	failed := f.failed
	if !failed {
		f.sent = append(f.sent, msg)
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failed {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`)
		return
	}
	fmt.Fprintf(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":%s,"type":"private"},"text":%q}}`,
		msg.ChatID, msg.Text)
}

func (f *fakeAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type memRecorder struct {
	mu       sync.Mutex
	launches []store.Launch
	err      error
}

func (m *memRecorder) RecordLaunch(_ context.Context, l store.Launch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.launches = append(m.launches, l)
	return nil
}

func newTestBot(t *testing.T, webAppURL string, rec LaunchRecorder) (*Bot, *fakeAPI, *observer.ObservedLogs) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	core, logs := observer.New(zap.DebugLevel)
	b, err := New(Config{
		Token:       "123:test",
		WebAppURL:   webAppURL,
		APIURL:      srv.URL,
		Offline:     true,
		Synchronous: true,
	}, rec, zap.New(core))
	if err != nil {
		t.Fatal(err)
	}
	return b, api, logs
}

func textUpdate(chatID int64, username, text string) tele.Update {
	return tele.Update{
		ID: int(chatID),
		Message: &tele.Message{
			ID:     1,
			Text:   text,
			Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: chatID, Username: username},
		},
	}
}

func TestCommandsReplyWithPlayButton(t *testing.T) {
	const url = "https://game.example.org/runner/"
	for _, text := range []string{"/start", "/play", "/start ref-42"} {
		t.Run(text, func(t *testing.T) {
			b, api, _ := newTestBot(t, url, nil)
			b.ProcessUpdate(textUpdate(7, "alice", text))

			sent := api.messages()
			if len(sent) != 1 {
				t.Fatalf("expected exactly one reply, got %d", len(sent))
			}
			msg := sent[0]
			if msg.ChatID != "7" {
				t.Errorf("chat_id = %s", msg.ChatID)
			}
			if msg.Text != PromptText {
				t.Errorf("text = %q", msg.Text)
			}
			kb := msg.Markup.ReplyKeyboard
			if len(kb) != 1 || len(kb[0]) != 1 {
				t.Fatalf("expected one button, got %+v", kb)
			}
			if kb[0][0].Text != PlayLabel {
				t.Errorf("label = %q", kb[0][0].Text)
			}
			if kb[0][0].WebApp == nil || kb[0][0].WebApp.URL != url {
				t.Errorf("web_app = %+v", kb[0][0].WebApp)
			}
		})
	}
}

func TestDefaultURLReachesButton(t *testing.T) {
	b, api, _ := newTestBot(t, config.DefaultWebAppURL, nil)
	b.ProcessUpdate(textUpdate(1, "", "/play"))

	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("expected one reply, got %d", len(sent))
	}
	if got := sent[0].Markup.ReplyKeyboard[0][0].WebApp.URL; got != config.DefaultWebAppURL {
		t.Errorf("URL = %q, want default %q", got, config.DefaultWebAppURL)
	}
}

func TestUnroutedTextGetsNoReply(t *testing.T) {
	rec := &memRecorder{}
	b, api, _ := newTestBot(t, config.DefaultWebAppURL, rec)

	for _, text := range []string{"/Start", "/PLAY", "/stop", "/started", "/player", "start", "play", "hello", "/start@someotherbot"} {
		b.ProcessUpdate(textUpdate(3, "bob", text))
	}

	if sent := api.messages(); len(sent) != 0 {
		t.Errorf("expected no replies, got %d: %+v", len(sent), sent)
	}
	if len(rec.launches) != 0 {
		t.Errorf("expected no launches, got %d", len(rec.launches))
	}
}

func TestRepliesStayInTheirChat(t *testing.T) {
	b, api, _ := newTestBot(t, config.DefaultWebAppURL, nil)
	b.ProcessUpdate(textUpdate(100, "alice", "/start"))
	b.ProcessUpdate(textUpdate(200, "bob", "/play"))

	sent := api.messages()
	if len(sent) != 2 {
		t.Fatalf("expected two replies, got %d", len(sent))
	}
	if sent[0].ChatID != "100" || sent[1].ChatID != "200" {
		t.Errorf("replies crossed chats: %s, %s", sent[0].ChatID, sent[1].ChatID)
	}
}

func TestLaunchRecorded(t *testing.T) {
	rec := &memRecorder{}
	b, _, _ := newTestBot(t, config.DefaultWebAppURL, rec)
	b.ProcessUpdate(textUpdate(9, "carol", "/play"))

	if len(rec.launches) != 1 {
		t.Fatalf("expected one launch, got %d", len(rec.launches))
	}
	l := rec.launches[0]
	if l.ChatID != 9 || l.UserID != 9 || l.Username != "carol" || l.Command != PlayCmd {
		t.Errorf("launch = %+v", l)
	}
	if l.SentAt.IsZero() {
		t.Error("SentAt not set")
	}
}

func TestRecorderFailureIsOnlyLogged(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	b, api, logs := newTestBot(t, config.DefaultWebAppURL, rec)
	b.ProcessUpdate(textUpdate(5, "dave", "/start"))

	if len(api.messages()) != 1 {
		t.Fatal("reply should still be sent")
	}
	if logs.FilterMessage("launch not recorded").Len() != 1 {
		t.Error("expected a warning for the failed record")
	}
	if logs.FilterMessage("handler failed").Len() != 0 {
		t.Error("recorder failure must not reach OnError")
	}
}

func TestSendFailureReachesOnError(t *testing.T) {
	rec := &memRecorder{}
	b, api, logs := newTestBot(t, config.DefaultWebAppURL, rec)
	api.mu.Lock()
	api.failed = true
	api.mu.Unlock()

	b.ProcessUpdate(textUpdate(11, "erin", "/start"))

	entries := logs.FilterMessage("handler failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one OnError log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["chat_id"]; got != int64(11) {
		t.Errorf("chat_id field = %v", got)
	}
	if len(rec.launches) != 0 {
		t.Error("failed send must not be recorded")
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{Token: "x", WebAppURL: "not a url", Offline: true}, nil, nil)
	if err == nil {
		t.Fatal("expected error for invalid web app URL")
	}
}
