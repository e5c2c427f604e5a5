package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/config"
	"github.com/hotelaccelerator/backoffice-service/internal/crypto"
	"github.com/hotelaccelerator/backoffice-service/internal/monitoring"
	"github.com/hotelaccelerator/backoffice-service/internal/server"
	"github.com/hotelaccelerator/backoffice-service/internal/service"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		dbHost = flag.String("db-host", "localhost", "Database host")
		dbPort = flag.Int("db-port", 5432, "Database port")
		dbUser = flag.String("db-user", "admin", "Database user")
		dbPass = flag.String("db-pass", "securepassword", "Database password")
		dbName = flag.String("db-name", "backoffice", "Database name")
	)
	flag.Parse()

	cfg := config.Load()
	if cfg.EncryptionKey != "" {
		if err := crypto.SetKey([]byte(cfg.EncryptionKey)); err != nil {
			log.Fatal().Err(err).Msg("Invalid token encryption key")
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := store.Open(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	defer rdb.Close()

	monitoring.InitMetrics()

	logger := audit.NewLogger(db)

	rules := store.NewRuleRepository(db)
	channels := store.NewChannelRepository(db)
	collaborators := store.NewCollaboratorRepository(db, rdb)
	structures := store.NewStructureRepository(db)
	conversations := store.NewConversationRepository(db)

	provisioner := service.NewProvisioningService(structures, cfg.ProvisionBuffer)

	srv := server.New(
		service.NewMessageRuleService(rules, logger),
		service.NewEmailChannelService(channels, logger),
		service.NewSuperAdminService(collaborators, structures, provisioner, logger),
		service.NewInboxWriteService(conversations, logger),
		service.NewInboxReadService(conversations),
	)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Routes(),
	}
	go func() {
		log.Info().Msgf("Back-office API listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		metricsServer := &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: mux,
		}

		log.Info().Msgf("Health and metrics server listening on %s", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if err := httpServer.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close HTTP server")
	}
	log.Info().Msg("Server exiting")
}
