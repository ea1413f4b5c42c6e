// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	equipmentservice "trafficwatch/internal/equipment/service"
	equipmentstore "trafficwatch/internal/equipment/store"
	"trafficwatch/internal/evidence"
	"trafficwatch/internal/jwttoken"
	"trafficwatch/internal/platform/config"
	"trafficwatch/internal/platform/httpserver"
	"trafficwatch/internal/platform/logger"
	"trafficwatch/internal/platform/metrics"
	"trafficwatch/internal/platform/objectstore"
	"trafficwatch/internal/platform/postgres"
	httptransport "trafficwatch/internal/transport/http"
	violationservice "trafficwatch/internal/violation/service"
	violationstore "trafficwatch/internal/violation/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	s3Client, err := objectstore.NewClient(ctx, cfg.S3)
	if err != nil {
		log.Error("object store client failed", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	equipmentSvc := equipmentservice.New(equipmentstore.NewPostgres(db), log, m)
	violationSvc := violationservice.New(violationstore.NewPostgres(db), equipmentSvc, log, m)
	evidenceSvc := evidence.New(s3Client, cfg.S3.Bucket, cfg.S3.PublicBaseURL, log, m)
	tokens := jwttoken.NewService(cfg.JWTSigningKey)

	router := httptransport.NewRouter(
		httptransport.NewEquipmentHandler(equipmentSvc, violationSvc, log),
		httptransport.NewViolationHandler(violationSvc, evidenceSvc, log),
		tokens,
		registry,
		log,
	)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting trafficwatch", "addr", cfg.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
