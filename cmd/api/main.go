package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"zentra/internal/adapter/repo"
	"zentra/internal/generator"
	"zentra/internal/http/handlers"
	httpapi "zentra/internal/http/httpapi"
	"zentra/internal/infra"
	"zentra/internal/infra/geoip"
	"zentra/internal/notify"
	"zentra/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	store, err := storage.NewFileStore(cfg.AppsDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init artifact store")
	}

	completer, err := generator.NewOpenAIClient(generator.OpenAIOptions{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init completion client")
	}
	engine := generator.NewEngine(completer, store, logger)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		mailer, err := notify.NewMailer(notify.MailerOptions{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init mailer")
		}
		notifier = mailer
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	app := &handlers.App{
		Logger:   logger,
		Config:   cfg,
		Users:    repo.NewUserRepository(dbpool),
		Prompts:  repo.NewPromptRepository(dbpool),
		Apps:     repo.NewAppRepository(dbpool),
		Views:    repo.NewViewEventRepository(dbpool),
		Feedback: repo.NewFeedbackRepository(dbpool),
		Engine:   engine,
		Store:    store,
		Notifier: notifier,
		Geo:      geo,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
