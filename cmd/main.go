package main

import (
	"context"
	"eventdesk/internal/api/api"
	"eventdesk/internal/backend"
	"eventdesk/internal/directory"
	"eventdesk/internal/feed"
	"eventdesk/internal/inbox"
	"eventdesk/internal/mailer"
	"eventdesk/internal/rabbit"
	"eventdesk/internal/service"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventdesk/cmd/buildCFG"

	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, relying on environment")
	}

	cfg := config.New()
	if err := cfg.Load("config.yaml", "", "'"); err != nil {
		log.Fatal().Msgf("failed to load configuration: %v", err)
	}
	serverCfg := buildCFG.BuildServerConfig(cfg, &log)
	port := serverCfg.Port

	backendCfg, err := buildCFG.BuildBackendConfig(cfg, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build backend config")
	}
	client := backend.New(backendCfg.BaseURL, &log)

	counter := directory.NewRandomCounter(time.Now().UnixNano())
	dir := directory.NewStore(client, counter, backendCfg.Admin, &log)

	box := inbox.NewStore(inbox.SampleFeed(time.Now()), &log)
	if err := box.Load(context.Background()); err != nil {
		log.Warn().Err(err).Msg("failed to seed inbox")
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var reader *feed.Reader
	rabbitCfg, err := buildCFG.BuildRabbitConfig(cfg, &log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ not configured, inbox will not receive live notifications")
	} else {
		rmq, err := rabbit.New(rabbitCfg.Url, rabbitCfg.Exchange, rabbitCfg.Queue)
		if err != nil {
			log.Fatal().Msgf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rmq.Close()

		var forwarder feed.Forwarder
		mailCfg := buildCFG.BuildMailConfig(cfg, &log)
		if mailCfg.Enabled() {
			forwarder = mailer.New(mailCfg, &log)
		}

		reader = feed.NewReader(rmq, box, forwarder)
		reader.Start(workerCtx)
	}

	serviceInstance := service.NewService(dir, box, client, &log)
	app := api.NewRouters(&api.Routers{Service: serviceInstance})

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on %s", port)
		if err := app.Run(":" + port); err != nil {
			serverErrChan <- fmt.Errorf("failed to start server: %w", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-signalChan:
		log.Info().Msgf("Received signal %s. Initiating shutdown...", sig)
	case err := <-serverErrChan:
		log.Error().Msgf("Server error: %v", err)
	}

	cancelWorkers()
	if reader != nil {
		reader.Stop()
	}

	log.Info().Msg("Shutdown complete")
}
