package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"limslite-service/cmd/migration"
	"limslite-service/internal/app/config"
	"limslite-service/internal/app/contracts"
	mllpDelivery "limslite-service/internal/app/delivery/mllp"
	"limslite-service/internal/app/delivery/http/middlewares"
	"limslite-service/internal/app/delivery/http/routers"
	"limslite-service/internal/app/drivers/database"
	"limslite-service/internal/app/drivers/logger"
	"limslite-service/internal/app/drivers/messaging"
	"limslite-service/internal/app/drivers/storage"
	"limslite-service/internal/app/services/core/assays"
	"limslite-service/internal/app/services/core/dashboard"
	"limslite-service/internal/app/services/core/ingestion"
	"limslite-service/internal/app/services/core/instruments"
	"limslite-service/internal/app/services/core/resolver"
	"limslite-service/internal/app/services/core/results"
	"limslite-service/internal/app/services/core/runs"
	"limslite-service/internal/app/services/profiles/c4800"
	"limslite-service/internal/app/services/shared/locker"
	"limslite-service/internal/app/services/shared/metrics"
	"limslite-service/internal/app/services/shared/noop"
	"limslite-service/internal/app/services/shared/publisher"
	"limslite-service/internal/app/services/shared/redis"
	archiveStorage "limslite-service/internal/app/services/shared/storage"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	if err := internalConfig.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}

	postgresDB := database.NewPostgresDB(driverConfig)
	if internalConfig.App.RunMigrations || *migrateOnly {
		migration.Run(postgresDB)
	}
	if *migrateOnly {
		postgresDB.Close()
		return
	}

	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		PostgresDB:     postgresDB,
		Logger:         logger.NewZapLogger(driverConfig, internalConfig),
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}
	if driverConfig.Redis.Enabled {
		bootstrap.Redis = database.NewRedisClient(driverConfig)
	}
	if driverConfig.RabbitMQ.Enabled {
		bootstrap.RabbitMQ = messaging.NewRabbitMQ(driverConfig)
	}
	if driverConfig.Minio.Enabled {
		bootstrap.Minio = storage.NewMinio(driverConfig, internalConfig)
	}

	mllpServer, httpServer := bootstrapingTheApp(bootstrap, location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return mllpServer.ListenAndServe(groupCtx)
	})
	group.Go(func() error {
		bootstrap.Logger.Info("Dashboard server listening", zap.String("address", httpServer.Addr))
		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		bootstrap.Logger.Info("Waiting for pending connections that already received by server to be processed..")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
		)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			bootstrap.Logger.Error("Dashboard server forced to shutdown", zap.Error(err))
		}
		if err := mllpServer.Shutdown(shutdownCtx); err != nil {
			bootstrap.Logger.Error("MLLP server forced to shutdown", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		bootstrap.Logger.Error("Server stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()
	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error closing drivers: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap, location *time.Location) (*mllpDelivery.Server, *http.Server) {
	log := bootstrap.Logger
	internalConfig := bootstrap.InternalConfig

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ingestMetrics, err := metrics.NewIngestMetrics(registry)
	if err != nil {
		log.Fatal("Error registering ingest metrics", zap.Error(err))
	}

	// Repositories
	instrumentRepository := instruments.NewInstrumentPostgresRepository(log)
	assayRepository := assays.NewAssayPostgresRepository(log)
	runRepository := runs.NewRunPostgresRepository(log)
	resultRepository := results.NewResultPostgresRepository(log)

	// Optional integrations
	var lockerService contracts.LockerService = noop.NewLocker()
	if bootstrap.Redis != nil {
		lockerService = locker.NewLockService(redis.NewRedisRepository(bootstrap.Redis, log), log)
	}

	var messageArchiver contracts.MessageArchiver = noop.NewArchiver()
	if bootstrap.Minio != nil {
		messageArchiver = archiveStorage.NewMinioArchiver(bootstrap.Minio, internalConfig.Minio.ArchiveBucketName, log)
	}

	var runEventPublisher contracts.RunEventPublisher = noop.NewPublisher()
	if bootstrap.RabbitMQ != nil {
		runEventPublisher, err = publisher.NewRabbitMQPublisher(bootstrap.RabbitMQ, internalConfig.RabbitMQ.RunEventsQueue, log)
		if err != nil {
			log.Fatal("Error declaring run events queue", zap.Error(err))
		}
	}

	// Ingestion
	entityResolver := resolver.NewEntityResolver(
		bootstrap.PostgresDB,
		instrumentRepository,
		assayRepository,
		runRepository,
		resultRepository,
		log,
	)
	ingestionUsecase := ingestion.NewIngestionUsecase(
		bootstrap.PostgresDB,
		entityResolver,
		lockerService,
		messageArchiver,
		runEventPublisher,
		ingestMetrics,
		ingestion.Options{
			SkipInvalidSpecimens: internalConfig.MLLP.SkipInvalidSpecimens(),
			MessageLockTTL:       internalConfig.MLLP.MessageLockTTL(),
		},
		log,
	)
	mapper := c4800.NewC4800Mapper(location, log)
	handler := mllpDelivery.NewHandler(internalConfig, mapper, ingestionUsecase, ingestMetrics, log)
	mllpServer := mllpDelivery.NewServer(
		internalConfig.MLLP.Address,
		internalConfig.MLLP.MaxConnectionsPerSecond,
		handler,
		ingestMetrics,
		log,
	)

	// Dashboard
	dashboardUsecase := dashboard.NewDashboardUsecase(bootstrap.PostgresDB, runRepository, resultRepository, log)
	dashboardController := dashboard.NewDashboardController(log, dashboardUsecase)

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares.NewMiddlewares(log, internalConfig),
		dashboardController,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	httpServer := &http.Server{
		Addr:              internalConfig.Dashboard.Port,
		Handler:           bootstrap.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return mllpServer, httpServer
}
