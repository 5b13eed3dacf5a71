// Package daemon wires storage, services and the web server into one process.
package daemon

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sitesettings/sitesettings/internal/auth"
	"github.com/sitesettings/sitesettings/internal/config"
	"github.com/sitesettings/sitesettings/internal/db/controller/setting"
	"github.com/sitesettings/sitesettings/internal/db/dsn"
	"github.com/sitesettings/sitesettings/internal/db/models"
	"github.com/sitesettings/sitesettings/internal/settings"
	"github.com/sitesettings/sitesettings/internal/settings/cache"
	"github.com/sitesettings/sitesettings/internal/web"
	"github.com/sitesettings/sitesettings/internal/web/handler"
	"github.com/sitesettings/sitesettings/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the process is asked to stop and the web service is down.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// App returns the fiber application.
func (d *Daemon) App() *fiber.App {
	return d.webService.App
}

// OpenDB opens the database selected by GormEngine.
func OpenDB(dbCfg *config.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbCfg.GormEngine {
	case config.EngineMySQL:
		dialector = gormmysql.Open(dsn.MySQL(dbCfg))
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Postgres(dbCfg))
	case config.EngineSQLite, "":
		dialector = sqlite.Open(dbCfg.Name)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedEngine, dbCfg.GormEngine)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if dbCfg.GormEngine == config.EngineSQLite || dbCfg.GormEngine == "" {
		// sqlite allows a single writer
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sqlite pool: %w", err)
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// sessionStorage keeps sessions next to the application data.
// For sqlite sessions live in memory.
func sessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.MySQL(&cfg.DB),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Postgres(&cfg.DB),
			Table:         sessionTable,
		})
	default:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")
		return nil
	}
}

// New creates a new Daemon instance with the provided configuration.
// It connects and migrates the database and seeds missing roles, the bootstrap admin and settings.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	db, err := OpenDB(&cfg.DB)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	deps, err := newDeps(db, cfg)
	if err != nil {
		return nil, err
	}

	if err = Seed(ctx, cfg, deps); err != nil {
		return nil, err
	}

	deps.Sessions = session.NewStore(sessionStorage(cfg), cfg.Webserver.Session.ExpiryTime)

	return &Daemon{
		cfg:        cfg,
		db:         db,
		webService: web.New(cfg, deps),
	}, nil
}

func newDeps(db *gorm.DB, cfg *config.Config) (*handler.Deps, error) {
	store, err := setting.NewStore(db)
	if err != nil {
		return nil, err
	}

	svc := settings.NewService(store)

	return &handler.Deps{
		Config:   cfg,
		Settings: svc,
		Cache:    cache.New(svc),
		Auth:     auth.NewService(db),
		Users:    auth.NewLocalProvider(db),
	}, nil
}

// RunSeed migrates the database and seeds it without starting the web service.
func RunSeed(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return ErrNilConfig
	}

	db, err := OpenDB(&cfg.DB)
	if err != nil {
		return err
	}

	if err = Migrate(db); err != nil {
		return err
	}

	deps, err := newDeps(db, cfg)
	if err != nil {
		return err
	}

	return Seed(ctx, cfg, deps)
}
