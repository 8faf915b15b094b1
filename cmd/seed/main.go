package main

import (
	"context"
	"flag"
	"os"
	"time"

	"secondchance/internal/config"
	"secondchance/internal/db"
	"secondchance/internal/logging"
	"secondchance/internal/repository"
	"secondchance/internal/seed"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	source := flag.String("source", os.Getenv("SEED_SOURCE"), "items JSON file path or http(s) URL")
	flag.Parse()
	if *source == "" {
		log.Error("no seed source given, use -source or SEED_SOURCE")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Error("failed to connect to mongo", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := db.EnsureItemIndexes(ctx, database); err != nil {
		log.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	log.Info("fetching items", "source", *source)
	items, err := seed.Load(ctx, *source)
	if err != nil {
		log.Error("failed to load items", "error", err)
		os.Exit(1)
	}

	res, err := seed.Items(ctx, repository.NewItemRepository(database), items, log)
	if err != nil {
		log.Error("failed to seed items", "error", err)
		os.Exit(1)
	}

	log.Info("seed completed",
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
	)
}
