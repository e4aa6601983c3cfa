package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"modbridge/internal/bootstrap/config"
	"modbridge/internal/bootstrap/database"
	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/infrastructure/credentials"
	sqliterepo "modbridge/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "modbridge/internal/infrastructure/persistence/sqlite/uow"
	"modbridge/internal/infrastructure/reviewqueue"
	"modbridge/internal/metrics"
	"modbridge/internal/ports"
	bridgesvc "modbridge/internal/usecase/bridge"
	"modbridge/internal/usecase/scheduler"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSyncStateRepository,
			fx.As(new(ports.SyncStateStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewMappingRepository,
			fx.As(new(ports.MappingStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAuditRepository,
			fx.As(new(ports.AuditStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			credentials.NewConfigStore,
			fx.As(new(ports.CredentialStore)),
		),
	),
	fx.Provide(provideReviewQueue),
	fx.Provide(provideProm),
	fx.Provide(func(p *metrics.Prom) metrics.Metrics { return p }),
	fx.Provide(provideBridgeService),
	fx.Provide(provideScheduler),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideReviewQueue(lc fx.Lifecycle, cfg config.Config) (ports.ReviewQueue, error) {
	if cfg.ReviewQueue.Driver == "nats" {
		queue, err := reviewqueue.NewNATSQueue(cfg.ReviewQueue.URL, cfg.ReviewQueue.SubjectPrefix)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				queue.Close()
				return nil
			},
		})
		return queue, nil
	}
	return reviewqueue.NewLogQueue(), nil
}

func provideProm(cfg config.Config) *metrics.Prom {
	return metrics.NewProm(cfg.App.Name)
}

func provideBridgeService(
	creds ports.CredentialStore,
	syncStates ports.SyncStateStore,
	audits ports.AuditStore,
	mappings ports.MappingStore,
	uow ports.UnitOfWork,
	m metrics.Metrics,
) *bridgesvc.Service {
	return bridgesvc.NewService(creds, syncStates, audits, mappings, uow, bridgesvc.DefaultClientFactory, m)
}

func provideScheduler(
	cfg config.Config,
	svc *bridgesvc.Service,
	queue ports.ReviewQueue,
	m metrics.Metrics,
) *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		Interval: time.Duration(cfg.Poller.IntervalMs) * time.Millisecond,
		Enabled:  cfg.Poller.Enabled,
	}, svc, queue, m)
}
