package store

import (
	"context"
	"fmt"
	"time"
)

// Launch is one Play reply that reached Telegram.
type Launch struct {
	ChatID   int64
	UserID   int64
	Username string
	Command  string
	SentAt   time.Time
}

func (d *DB) RecordLaunch(ctx context.Context, l Launch) error {
	_, err := d.ExecContext(ctx,
		`INSERT INTO launches (chat_id, user_id, username, command, sent_at) VALUES (?, ?, ?, ?, ?)`,
		l.ChatID, l.UserID, l.Username, l.Command, l.SentAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record launch: %w", err)
	}
	return nil
}

func (d *DB) CountLaunches(ctx context.Context) (int, error) {
	var n int
	if err := d.QueryRowContext(ctx, "SELECT COUNT(*) FROM launches").Scan(&n); err != nil {
		return 0, fmt.Errorf("count launches: %w", err)
	}
	return n, nil
}

// RecentLaunches returns up to limit launches, newest first.
func (d *DB) RecentLaunches(ctx context.Context, limit int) ([]Launch, error) {
	rows, err := d.QueryContext(ctx,
		`SELECT chat_id, user_id, username, command, sent_at FROM launches ORDER BY sent_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent launches: %w", err)
	}
	defer rows.Close()

	var out []Launch
	for rows.Next() {
		var (
			l  Launch
			ms int64
		)
		if err := rows.Scan(&l.ChatID, &l.UserID, &l.Username, &l.Command, &ms); err != nil {
			return nil, fmt.Errorf("recent launches: %w", err)
		}
		l.SentAt = time.UnixMilli(ms)
		out = append(out, l)
	}
	return out, rows.Err()
}
