package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eliseohh/runnercatcherbot/internal/store"
)

// launches prints the launch log kept by the bot.
//
//	launches [-db ./launches.db] [-n 20] [-reset]
func main() {
	dbPath := flag.String("db", envOr("LAUNCH_DB", "./launches.db"), "launch log path")
	limit := flag.Int("n", 20, "recent launches to list")
	reset := flag.Bool("reset", false, "drop all recorded launches first")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Fatal: launch log disabled (LAUNCH_DB is empty)")
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}
	defer db.Close()

	if *reset {
		if err := db.Reset(); err != nil {
			db.Close()
			log.Fatalf("Fatal: %v", err)
		}
		fmt.Println("Launch log reset.")
	}

	if err := db.WriteReport(context.Background(), os.Stdout, *limit); err != nil {
		db.Close()
		log.Fatalf("Fatal: %v", err)
	}
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
