package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-sync/external/sleeper"
	"github.com/riskibarqy/fantasy-sync/internal/config"
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-sync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-sync/internal/interfaces/report"
	"github.com/riskibarqy/fantasy-sync/internal/observability"
	idgen "github.com/riskibarqy/fantasy-sync/internal/platform/id"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"github.com/riskibarqy/fantasy-sync/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Container holds the services of one process run.
type Container struct {
	Config      config.Config
	Logger      *logging.Logger
	DB          *sqlx.DB
	MatchupSync *usecase.MatchupSyncService
	PodiumMax   *usecase.PodiumMaxService
	LeagueTable *usecase.LeagueTableService

	shutdownTracing observability.ShutdownFunc
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	shutdownTracing := observability.InitTracing(cfg, logger)

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL: cfg.SleeperBaseURL,
		Timeout: cfg.SleeperTimeout,
		Logger:  logger.Named("sleeper"),
	})

	seasonRepo := postgres.NewSeasonRepository(db)
	clubRepo := postgres.NewClubRepository(db)
	matchupRepo := postgres.NewMatchupRepository(db)
	podiumRepo := postgres.NewPodiumRepository(db)
	ids := idgen.NewUUIDGenerator()

	matcher := matchup.Matcher{
		Threshold: cfg.MatchThreshold,
		Policy:    matchup.Policy(cfg.MatchPolicy),
	}

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		MatchupSync: usecase.NewMatchupSyncService(
			sleeperClient,
			seasonRepo,
			clubRepo,
			matchupRepo,
			matcher,
			ids,
			cfg.SyncMaxWorkers,
			logger,
		),
		PodiumMax:       usecase.NewPodiumMaxService(sleeperClient, seasonRepo, podiumRepo, ids, logger),
		LeagueTable:     usecase.NewLeagueTableService(seasonRepo, podiumRepo, report.NewCSVWriter(), logger),
		shutdownTracing: shutdownTracing,
	}, nil
}

// Close releases the database pool and flushes pending spans.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	if c.shutdownTracing != nil {
		if err := c.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracing: %w", err))
		}
	}
	return errors.Join(errs...)
}

// OpenDB connects to postgres through the OpenTelemetry sql wrapper.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping db: %v", usecase.ErrDependencyUnavailable, err)
	}

	return db, nil
}
