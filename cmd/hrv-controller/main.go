package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/homehab/hrv-controller/db"
	"github.com/homehab/hrv-controller/internal/config"
	"github.com/homehab/hrv-controller/internal/controller"
	"github.com/homehab/hrv-controller/internal/datadog"
	"github.com/homehab/hrv-controller/internal/env"
	"github.com/homehab/hrv-controller/internal/logging"
	"github.com/homehab/hrv-controller/internal/mqtt"
	"github.com/homehab/hrv-controller/internal/store"
)

func main() {
	cfg := config.Load()
	env.Cfg = &cfg
	logging.Init(cfg.LogFile, cfg.LogLevel)

	log.Info().
		Str("broker", cfg.Broker).
		Str("topic_prefix", cfg.TopicPrefix).
		Msg("Starting HRV controller")

	if cfg.EnableDatadog {
		datadog.InitMetrics()
	}

	conn, err := db.Open(cfg.DBFile)
	if err != nil {
		log.Warn().Err(err).Msg("Tick history disabled, failed to open database")
		conn = nil
	} else {
		defer conn.Close()
	}

	client, err := mqtt.NewRealClient(cfg.Broker, cfg.ClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MQTT broker")
	}
	defer client.Close()

	ctrl := controller.New(&cfg, client, store.New(cfg.StateFile), conn)
	if err := ctrl.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to input topics")
	}

	// Publish the defaults-based outputs immediately; inputs refine them as
	// sensors report.
	ctrl.Tick()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("Shutting down HRV controller")
}
