// Command server runs the certification platform API. main wires the
// stores, event pipeline, and HTTP surface; business logic lives in the
// internal service packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	applicationhandler "agricert/internal/application/handler"
	applicationmetrics "agricert/internal/application/metrics"
	applicationservice "agricert/internal/application/service"
	applicationstore "agricert/internal/application/store"
	"agricert/internal/authz"
	certificatehandler "agricert/internal/certificate/handler"
	certificatemetrics "agricert/internal/certificate/metrics"
	certificateservice "agricert/internal/certificate/service"
	certificatestore "agricert/internal/certificate/store"
	"agricert/internal/events"
	"agricert/internal/events/kafka"
	farmhandler "agricert/internal/farm/handler"
	farmmetrics "agricert/internal/farm/metrics"
	farmservice "agricert/internal/farm/service"
	farmstore "agricert/internal/farm/store"
	httpapi "agricert/internal/http"
	"agricert/internal/platform/config"
	"agricert/internal/platform/httpserver"
	"agricert/internal/platform/logger"
	platformredis "agricert/internal/platform/redis"
	staffhandler "agricert/internal/staff/handler"
	staffservice "agricert/internal/staff/service"
	staffstore "agricert/internal/staff/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var (
		farms farmservice.FarmStore
		apps  applicationservice.ApplicationStore
		certs certificatestore.Store
		staff staffservice.StaffStore

		farmGate certificateservice.FarmGate
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}

		farmPG := farmstore.NewPostgres(pool)
		farms = farmPG
		apps = applicationstore.NewPostgres(pool)
		certs = certificatestore.NewPostgres(pool)
		staff = staffstore.NewPostgres(pool)
		farmGate = certificateservice.NewStoreFarmGate(farmPG)
		log.Info("using postgres stores")
	} else {
		farmMem := farmstore.NewInMemory()
		farms = farmMem
		apps = applicationstore.NewInMemory()
		certs = certificatestore.NewInMemory()
		staff = staffstore.NewInMemory()
		farmGate = certificateservice.NewStoreFarmGate(farmMem)
		log.Info("using in-memory stores, data will not survive a restart")
	}

	if cfg.Redis.URL != "" {
		rdb, err := platformredis.New(cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		certs = certificatestore.NewRedisCache(certs, rdb.Client,
			certificatestore.WithCacheLogger(log))
		log.Info("certificate cache enabled")
	}

	// Delivery runs off the request path: handlers enqueue, the worker
	// drains into the terminal sink.
	inbox := events.NewChannelSink(256)
	var terminal events.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := kafka.NewSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		terminal = kafkaSink
		log.Info("publishing events to kafka", "topic", cfg.Kafka.Topic)
	} else {
		terminal = events.NewInMemorySink()
		log.Info("no brokers configured, events stay in process")
	}
	worker := events.NewWorker(terminal, inbox.Inbox())

	publisher := events.NewPublisher(inbox,
		events.WithLogger(log),
		events.WithMetrics(events.NewMetrics(reg)),
	)

	farmSvc := farmservice.New(farms,
		farmservice.WithEventPublisher(publisher),
		farmservice.WithLogger(log),
		farmservice.WithMetrics(farmmetrics.New(reg)),
	)
	appSvc := applicationservice.New(apps,
		applicationservice.WithEventPublisher(publisher),
		applicationservice.WithLogger(log),
		applicationservice.WithMetrics(applicationmetrics.New(reg)),
	)
	certSvc := certificateservice.New(certs, farmGate,
		certificateservice.WithEventPublisher(publisher),
		certificateservice.WithLogger(log),
		certificateservice.WithMetrics(certificatemetrics.New(reg)),
	)
	staffSvc := staffservice.New(staff,
		staffservice.WithEventPublisher(publisher),
		staffservice.WithLogger(log),
	)

	router := httpapi.NewRouter(httpapi.Deps{
		Farms:          farmhandler.New(farmSvc),
		Applications:   applicationhandler.New(appSvc),
		Certificates:   certificatehandler.New(certSvc),
		Staff:          staffhandler.New(staffSvc),
		TokenValidator: authz.NewTokenValidator(cfg.Server.JWTSigningKey),
		Logger:         log,
		Registry:       reg,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
