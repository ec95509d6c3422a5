package store

import (
	"context"
	"fmt"
	"io"
	"time"
)

// WriteReport prints the launch total followed by up to limit recent launches.
func (d *DB) WriteReport(ctx context.Context, w io.Writer, limit int) error {
	total, err := d.CountLaunches(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Launches: %d\n", total)
	if limit <= 0 || total == 0 {
		return nil
	}

	recent, err := d.RecentLaunches(ctx, limit)
	if err != nil {
		return err
	}
	for _, l := range recent {
		who := l.Username
		if who == "" {
			who = fmt.Sprintf("user %d", l.UserID)
		}
		fmt.Fprintf(w, "%s  %-6s  chat %d  %s\n", l.SentAt.UTC().Format(time.RFC3339), l.Command, l.ChatID, who)
	}
	return nil
}

// Reset drops and recreates the launch log.
func (d *DB) Reset() error {
	if err := d.Nuke(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return d.InitSchema(schema)
}
