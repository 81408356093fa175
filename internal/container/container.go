package container

import (
	"context"
	"fmt"
	"log/slog"

	"randalloc/adapters/csvreport"
	"randalloc/adapters/excel"
	"randalloc/adapters/rng"
	"randalloc/adapters/sqldb"
	"randalloc/app"
	"randalloc/domain/core"
	"randalloc/domain/run"
	"randalloc/internal/config"
	"randalloc/internal/randomization"
	"randalloc/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	GroupRepo ports.GroupRepository
	RunRepo   ports.RunRepository

	// Randomization components
	RNG    ports.RNGPort
	Engine *randomization.Engine

	// Report adapters
	ReportWriters []ports.ReportWriter
	ReportReaders map[run.ReportFormat]ports.ReportReader
	GroupSheets   ports.GroupSheetReader

	// Application services
	Groups        *app.GroupService
	Randomization *app.RandomizationService

	clock core.Clock
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		clock:  core.SystemClock,
	}

	return c, nil
}

// WithClock replaces the clock used to stamp reports
func (c *Container) WithClock(clock core.Clock) *Container {
	c.clock = clock
	return c
}

// Open connects to the configured database and wires everything on top of it
func (c *Container) Open(ctx context.Context) error {
	db, err := sqldb.Open(ctx, c.Config.Database)
	if err != nil {
		return err
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	c.initRepositories()
	c.initRandomization()
	c.initReports()

	format, err := run.ParseReportFormat(c.Config.Report.Format)
	if err != nil {
		return err
	}

	c.Groups = app.NewGroupService(c.GroupRepo, c.GroupSheets)
	c.Randomization = app.NewRandomizationService(
		c.GroupRepo,
		c.RunRepo,
		c.Engine,
		c.ReportWriters,
		c.ReportReaders,
		app.RandomizationOptions{
			DefaultFormat: format,
			HistoryLimit:  c.Config.Report.HistoryLimit,
			Clock:         c.clock,
		},
	)

	slog.Debug("container initialized", "driver", c.Config.Database.Driver)
	return nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() {
	c.GroupRepo = sqldb.NewGroupRepository(c.DB)
	c.RunRepo = sqldb.NewRunRepository(c.DB)
}

// initRandomization initializes the generator source and the engine
func (c *Container) initRandomization() {
	c.RNG = rng.NewMersenneAdapter()
	c.Engine = randomization.NewEngine(c.RNG)
}

// initReports initializes report writers and readers for every format
func (c *Container) initReports() {
	c.ReportWriters = []ports.ReportWriter{excel.NewReportWriter(), csvreport.NewWriter()}
	c.ReportReaders = map[run.ReportFormat]ports.ReportReader{
		run.FormatXLSX: excel.NewReportReader(),
		run.FormatCSV:  csvreport.NewReader(),
	}
	c.GroupSheets = excel.NewDataReader()
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
