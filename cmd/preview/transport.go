package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// captured is one sendMessage the bot tried to make.
type captured struct {
	ChatID string
	Text   string
	Markup tele.ReplyMarkup
}

// dryRun implements http.RoundTripper. It answers every Bot API call with
// a canned success and keeps sendMessage payloads instead of sending them.
type dryRun struct {
	sent []captured
}

func (d *dryRun) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasSuffix(req.URL.Path, "/sendMessage") {
		var params map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&params); err != nil {
			return nil, fmt.Errorf("decode sendMessage: %w", err)
		}
		c := captured{
			ChatID: fmt.Sprint(params["chat_id"]),
			Text:   fmt.Sprint(params["text"]),
		}
		if raw, ok := params["reply_markup"].(string); ok {
			if err := json.Unmarshal([]byte(raw), &c.Markup); err != nil {
				return nil, fmt.Errorf("decode reply_markup: %w", err)
			}
		}
		d.sent = append(d.sent, c)
	}

	body := `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}, nil
}
