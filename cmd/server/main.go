package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"subsidy/internal/delivery"
	"subsidy/internal/mailer"
	"subsidy/internal/platform/config"
	"subsidy/internal/platform/httpserver"
	"subsidy/internal/platform/logger"
	"subsidy/internal/platform/metrics"
	"subsidy/internal/platform/redis"
	"subsidy/internal/subsidy/events"
	"subsidy/internal/subsidy/handler"
	"subsidy/internal/subsidy/location"
	subsidymetrics "subsidy/internal/subsidy/metrics"
	"subsidy/internal/subsidy/service"
	"subsidy/internal/subsidy/zone"
)

// main wires dependencies and supervises the HTTP server and the delivery
// workers. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("subsidy service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	table, err := loadZones(cfg.Locations)
	if err != nil {
		return err
	}
	index, err := loadLocations(ctx, cfg.Locations)
	if err != nil {
		return err
	}
	log.Info("reference data loaded",
		"source", cfg.Locations.Source,
		"subdivisions", index.Len(),
	)

	checks := map[string]httpserver.Check{}
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks["redis"] = rdb.Health
	}

	publisher, err := newPublisher(cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(subsidymetrics.New(reg)),
		service.WithPublisher(publisher),
	}

	var queue *delivery.Queue
	if cfg.Delivery.Enabled {
		var sender *mailer.ResilientSender
		queue, sender, err = newQueue(cfg, rdb, reg, log)
		if err != nil {
			return err
		}
		checks["smtp"] = sender.Health
		opts = append(opts, service.WithDeliveryQueue(queue))
	} else {
		log.Info("report delivery disabled")
	}

	svc := service.New(index, table, opts...)
	httpMetrics := metrics.New(reg)
	router := NewRouter(handler.New(svc, log), httpMetrics, reg, checks)
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting subsidy service", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	if queue != nil {
		g.Go(func() error {
			return queue.Run(gctx)
		})
	}
	return g.Wait()
}

func loadZones(cfg config.LocationsConfig) (*zone.Table, error) {
	if cfg.ZonesFile != "" {
		return zone.LoadFile(cfg.ZonesFile)
	}
	return zone.Default()
}

func loadLocations(ctx context.Context, cfg config.LocationsConfig) (*location.Index, error) {
	switch cfg.Source {
	case config.SourcePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		return location.Build(ctx, location.NewPostgresSource(db, location.WithStates(cfg.States...)))
	default:
		return location.Build(ctx, location.NewCSVSource(cfg.CSVPath))
	}
}

func newPublisher(cfg config.KafkaConfig, log *slog.Logger) (events.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return events.NewLogPublisher(log), nil
	}
	return events.DialKafka(cfg.Brokers, cfg.Topic, cfg.ClientID)
}

func newQueue(cfg config.Config, rdb *redis.Client, reg prometheus.Registerer, log *slog.Logger) (*delivery.Queue, *mailer.ResilientSender, error) {
	smtp, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		From:        cfg.SMTP.From,
		ImplicitTLS: cfg.SMTP.ImplicitTLS,
		Timeout:     cfg.SMTP.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	policy := mailer.DefaultRetryPolicy
	policy.MaxRetries = cfg.Delivery.MaxRetries
	sender := mailer.NewResilientSender(smtp,
		mailer.WithRetryPolicy(policy),
		mailer.WithLogger(log),
	)

	var deduper delivery.Deduper = delivery.NewMemoryDeduper()
	if rdb != nil {
		deduper = delivery.NewRedisDeduper(rdb.Client, "")
	}

	return delivery.NewQueue(sender, cfg.Delivery.QueueSize,
		delivery.WithWorkers(cfg.Delivery.Workers),
		delivery.WithDeduper(deduper, cfg.Delivery.DedupeTTL),
		delivery.WithSendTimeout(cfg.Delivery.SendTimeout),
		delivery.WithDrainTimeout(cfg.Delivery.DrainTimeout),
		delivery.WithLogger(log),
		delivery.WithMetrics(delivery.NewMetrics(reg)),
	), sender, nil
}
