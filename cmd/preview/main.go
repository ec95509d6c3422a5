package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/eliseohh/runnercatcherbot/internal/bot"
	"github.com/eliseohh/runnercatcherbot/internal/config"
	"github.com/eliseohh/runnercatcherbot/internal/logging"
	tele "gopkg.in/telebot.v3"
)

// preview routes a message text through the real handlers without talking
// to Telegram and prints what the bot would reply.
//
//	preview [-url https://game.example.com/] /start
func main() {
	url := flag.String("url", envOr("WEBAPP_URL", config.DefaultWebAppURL), "Web App URL for the Play button")
	level := flag.String("log", "warn", "log level")
	flag.Parse()

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		text = bot.StartCmd
	}

	logger, err := logging.New(*level)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	defer logger.Sync()

	transport := &dryRun{}
	b, err := bot.New(bot.Config{
		Token:       "preview",
		WebAppURL:   *url,
		Client:      &http.Client{Transport: transport},
		Offline:     true,
		Synchronous: true,
	}, nil, logger)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	b.ProcessUpdate(tele.Update{
		ID: 1,
		Message: &tele.Message{
			ID:     1,
			Text:   text,
			Chat:   &tele.Chat{ID: 1, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: 1, Username: "preview"},
		},
	})

	if len(transport.sent) == 0 {
		fmt.Printf("%q -> no reply\n", text)
		return
	}
	for _, m := range transport.sent {
		fmt.Printf("%q -> %s\n", text, m.Text)
		for _, row := range m.Markup.ReplyKeyboard {
			for _, btn := range row {
				target := "(none)"
				if btn.WebApp != nil {
					target = btn.WebApp.URL
				}
				fmt.Printf("  [%s] opens %s\n", btn.Text, target)
			}
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
