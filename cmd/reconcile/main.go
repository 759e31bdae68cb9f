package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/alpost/backend/internal/db"
	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/pkg/config"
	"github.com/alpost/backend/pkg/logging"
)

func main() {
	fix := flag.Bool("fix", false, "rewrite drifting points from the vote ledgers")
	kind := flag.String("kind", "all", "entity kind to check: post, reply or all")
	flag.Parse()

	kinds, err := parseKinds(*kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.WithComponent("reconcile")

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := db.NewStore(database.DB)
	drifted := 0
	for _, k := range kinds {
		drift, err := store.FindDrift(ctx, k)
		if err != nil {
			logger.Fatal("Failed to check points", zap.Stringer("kind", k), zap.Error(err))
		}
		for _, d := range drift {
			logger.Warn("Points drift",
				zap.Stringer("kind", k),
				zap.Int64("id", d.ID),
				zap.Int("points", d.Points),
				zap.Int("ledger_sum", d.LedgerSum))
		}
		drifted += len(drift)

		if *fix && len(drift) > 0 {
			fixed, err := store.FixDrift(ctx, k)
			if err != nil {
				logger.Fatal("Failed to fix points", zap.Stringer("kind", k), zap.Error(err))
			}
			logger.Info("Points rewritten", zap.Stringer("kind", k), zap.Int64("rows", fixed))
		}
	}

	logger.Info("Reconcile finished", zap.Int("drifted", drifted), zap.Bool("fixed", *fix))
	if drifted > 0 && !*fix {
		os.Exit(3)
	}
}

func parseKinds(kind string) ([]forum.Kind, error) {
	switch kind {
	case "post":
		return []forum.Kind{forum.KindPost}, nil
	case "reply":
		return []forum.Kind{forum.KindReply}, nil
	case "all":
		return []forum.Kind{forum.KindPost, forum.KindReply}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q, want post, reply or all", kind)
	}
}
