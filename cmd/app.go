package cmd

import (
	"context"
	"fmt"

	"rewards/application"
	"rewards/config"
	"rewards/database"
	"rewards/domain/events"
	"rewards/domain/services"
	"rewards/infrastructure"
	"rewards/infrastructure/observability"
	"rewards/repository/memstore"
	"rewards/server"

	log "github.com/sirupsen/logrus"
)

// app holds the wired dependencies shared by every command
type app struct {
	deps         application.Dependencies
	healthChecks map[string]server.HealthCheck
	closers      []func()
}

// newApp connects storage, the event bus, the read cache and metrics as configured
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{healthChecks: make(map[string]server.HealthCheck)}

	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Event bus
	var transport infrastructure.MessagePublisher
	mapper := infrastructure.NewEventSubjectMapper()
	if cfg.NATSEnabled {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient := infrastructure.NewNATSClient(cfg.NATSServerList())
		if err := natsClient.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		})
		if err := natsClient.EnsureStream(mapper.StreamName(), mapper.GetAllSubjects()); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		transport = natsClient
		a.healthChecks["nats"] = natsClient.Healthy
		log.Info("NATS connection established successfully")
	} else {
		log.Info("NATS disabled, events are handled in-process only")
	}
	publisher := infrastructure.NewNATSEventPublisher(transport, mapper)

	// Storage
	var factory *infrastructure.UnitOfWorkFactory
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("Using the in-memory store, data is lost on exit")
		factory = infrastructure.NewMemoryUnitOfWorkFactory(memstore.NewStore(nil), publisher)
	default:
		log.WithField("database", database.RedactURL(cfg.GetDatabaseURL())).Info("Connecting to database...")
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.healthChecks["database"] = db.Healthy
		factory = infrastructure.NewUnitOfWorkFactory(db, publisher)
		log.Info("Database connection established successfully")
	}

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := metrics.Shutdown(context.Background()); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	})
	for _, eventType := range events.AllEventTypes {
		factory.RegisterLocalHandler(eventType, metrics.HandleEvent)
	}

	a.deps = application.Dependencies{
		UnitOfWorkFactory: factory,
		Location:          location,
		AccountSettings: services.AccountSettings{
			SignupBonusPoints:    cfg.SignupBonusPoints,
			ReferralBonusPoints:  cfg.ReferralBonusPoints,
			ReferralBonusTickets: cfg.ReferralBonusTickets,
		},
		Retry:   application.DefaultRetryPolicy(cfg.MaxTxRetries),
		Metrics: metrics,
	}

	// Read cache
	if cfg.RedisURL != "" {
		log.Info("Connecting to Redis...")
		redisClient, err := infrastructure.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := redisClient.Close(); err != nil {
				log.WithError(err).Error("Error closing Redis connection")
			}
		})
		cache := infrastructure.NewRedisBalanceCache(redisClient, cfg.BalanceCacheTTL)
		factory.RegisterLocalHandler(events.EventTypeBalanceChanged, cache.HandleBalanceChanged)
		a.deps.BalanceCache = cache
		a.healthChecks["cache"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
		log.Info("Balance cache enabled")
	}

	return a, nil
}

// newServer builds the HTTP server with a health check per connected dependency
func (a *app) newServer() *server.Server {
	srv := server.NewServer(a.deps)
	for name, check := range a.healthChecks {
		srv.AddHealthCheck(name, check)
	}
	return srv
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
