package bot

import (
	"fmt"

	"github.com/eliseohh/runnercatcherbot/internal/config"
	tele "gopkg.in/telebot.v3"
)

const (
	PromptText = "Tap Play to open the game:"
	PlayLabel  = "▶️ Play Game"
	StartCmd   = "/start"
	PlayCmd    = "/play"
)

// Commands are the only endpoints the bot answers. Matching is telebot's
// exact, case-sensitive command lookup.
var Commands = []string{StartCmd, PlayCmd}

// Button opens URL as a Web App inside the Telegram client.
type Button struct {
	Label string
	URL   string
}

// Reply is the prompt plus its single Web App button.
type Reply struct {
	Text   string
	Button Button
}

// Markup renders a fresh one-button reply keyboard.
func (r Reply) Markup() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		ResizeKeyboard: true,
		ReplyKeyboard: [][]tele.ReplyButton{{
			{Text: r.Button.Label, WebApp: &tele.WebApp{URL: r.Button.URL}},
		}},
	}
}

// Responder answers /start and /play with the Play button. It holds no
// mutable state, so one instance serves every chat concurrently.
type Responder struct {
	webAppURL string
}

func NewResponder(webAppURL string) (*Responder, error) {
	if err := config.ValidateWebAppURL(webAppURL); err != nil {
		return nil, fmt.Errorf("responder: %w", err)
	}
	return &Responder{webAppURL: webAppURL}, nil
}

func (r *Responder) Reply() Reply {
	return Reply{
		Text:   PromptText,
		Button: Button{Label: PlayLabel, URL: r.webAppURL},
	}
}

// Handle sends the reply to the originating chat. Send errors are returned
// as-is for the host's OnError.
func (r *Responder) Handle(c tele.Context) error {
	reply := r.Reply()
	return c.Send(reply.Text, reply.Markup())
}
