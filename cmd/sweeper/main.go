package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"zentra/internal/adapter/repo"
	"zentra/internal/domain"
	"zentra/internal/infra"
)

// The sweeper fails prompts stuck in processing, e.g. after a crash mid
// generation, so their owners can retry them.
func main() {
	var (
		maxAge   time.Duration
		interval time.Duration
		batch    int
		once     bool
	)
	flag.DurationVar(&maxAge, "max-age", 10*time.Minute, "age after which a processing prompt counts as stale")
	flag.DurationVar(&interval, "interval", time.Minute, "sweep interval")
	flag.IntVar(&batch, "batch", 100, "max prompts per sweep")
	flag.BoolVar(&once, "once", false, "run a single sweep and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv).With().Str("cmd", "sweeper").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	prompts := repo.NewPromptRepository(pool)
	users := repo.NewUserRepository(pool)

	sweep := func() {
		stale, err := prompts.ListStaleProcessing(ctx, maxAge, batch)
		if err != nil {
			logger.Error().Err(err).Msg("list stale prompts failed")
			return
		}
		for _, p := range stale {
			perr := domain.PromptError{
				Message:   "generation timed out",
				Code:      "TIMEOUT",
				Timestamp: time.Now(),
			}
			// A prompt in processing always holds a reserved quota slot,
			// and the slot is released only by whoever wins the transition
			// out of processing. Skipping the decrement on a lost
			// transition keeps the counter from under-counting.
			if err := prompts.MarkFailed(ctx, p.ID, perr); err != nil {
				logger.Error().Err(err).Str("prompt_id", p.ID).Msg("mark stale prompt failed")
				continue
			}
			if _, err := users.DecrementAppsCreated(ctx, p.UserID); err != nil {
				logger.Error().Err(err).Str("user_id", p.UserID).Msg("release quota failed")
			}
			logger.Info().Str("prompt_id", p.ID).Str("user_id", p.UserID).Msg("stale prompt failed")
		}
		if len(stale) > 0 {
			logger.Info().Int("count", len(stale)).Msg("sweep finished")
		}
	}

	sweep()
	if once {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
