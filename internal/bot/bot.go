package bot

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/eliseohh/runnercatcherbot/internal/store"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const recordTimeout = 5 * time.Second

// LaunchRecorder persists launches. *store.DB satisfies it.
type LaunchRecorder interface {
	RecordLaunch(ctx context.Context, l store.Launch) error
}

type Config struct {
	Token       string
	WebAppURL   string
	PollTimeout time.Duration

	// Dry-run and test hooks: alternate Bot API base URL or HTTP client,
	// skip getMe, run handlers inline.
	APIURL      string
	Client      *http.Client
	Offline     bool
	Synchronous bool
}

type Bot struct {
	api       *tele.Bot
	responder *Responder
	launches  LaunchRecorder
	log       *zap.Logger
}

// New builds the bot and registers /start and /play. launches may be nil,
// in which case nothing is recorded.
func New(cfg Config, launches LaunchRecorder, logger *zap.Logger) (*Bot, error) {
	responder, err := NewResponder(cfg.WebAppURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &Bot{responder: responder, launches: launches, log: logger}

	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pref := tele.Settings{
		URL:         cfg.APIURL,
		Client:      cfg.Client,
		Token:       cfg.Token,
		Poller:      &tele.LongPoller{Timeout: timeout},
		Offline:     cfg.Offline,
		Synchronous: cfg.Synchronous,
		OnError:     bot.onError,
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot.api = b
	bot.register()
	return bot, nil
}

func (b *Bot) Start() {
	b.log.Info("bot started",
		zap.String("username", b.api.Me.Username),
		zap.String("webapp_url", b.responder.webAppURL))
	b.api.Start()
}

func (b *Bot) Stop() {
	b.api.Stop()
}

// ProcessUpdate routes a single update as the poller would.
func (b *Bot) ProcessUpdate(u tele.Update) {
	b.api.ProcessUpdate(u)
}

func (b *Bot) register() {
	mw := []tele.MiddlewareFunc{b.logUpdates}
	if b.launches != nil {
		mw = append(mw, b.recordLaunch)
	}
	for _, cmd := range Commands {
		b.api.Handle(cmd, b.responder.Handle, mw...)
	}
}

func (b *Bot) onError(err error, c tele.Context) {
	fields := []zap.Field{zap.Error(err)}
	if c != nil && c.Chat() != nil {
		fields = append(fields, zap.Int64("chat_id", c.Chat().ID))
	}
	b.log.Error("handler failed", fields...)
}

func (b *Bot) logUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if ce := b.log.Check(zap.DebugLevel, "command"); ce != nil {
			var chatID int64
			if c.Chat() != nil {
				chatID = c.Chat().ID
			}
			ce.Write(zap.String("command", commandOf(c)), zap.Int64("chat_id", chatID))
		}
		return next(c)
	}
}

// recordLaunch stores a launch once the reply went out. A storage failure
// is logged and never reported back to the chat.
func (b *Bot) recordLaunch(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := next(c); err != nil {
			return err
		}

		l := store.Launch{Command: commandOf(c), SentAt: time.Now()}
		if chat := c.Chat(); chat != nil {
			l.ChatID = chat.ID
		}
		if u := c.Sender(); u != nil {
			l.UserID = u.ID
			l.Username = u.Username
		}

		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := b.launches.RecordLaunch(ctx, l); err != nil {
			b.log.Warn("launch not recorded", zap.Error(err), zap.Int64("chat_id", l.ChatID))
		}
		return nil
	}
}

// commandOf returns the command token without payload or @botname.
func commandOf(c tele.Context) string {
	m := c.Message()
	if m == nil {
		return ""
	}
	fields := strings.Fields(m.Text)
	if len(fields) == 0 {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return cmd
}
