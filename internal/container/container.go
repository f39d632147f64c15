package container

import (
	"context"
	"fmt"

	"asepower/adapters/excel"
	"asepower/adapters/postgres"
	"asepower/adapters/rscript"
	"asepower/app"
	"asepower/internal"
	"asepower/internal/config"
	"asepower/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	DesignLoader ports.DesignLoader
	Simulator    ports.Simulator
	SummaryStore ports.SummaryRepository

	// Services
	MergeService      *app.MergeService
	SummaryService    *app.SummaryService
	SimulationService *app.SimulationService
}

// New creates a new dependency injection container without a database.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config:       cfg,
		Logger:       logger,
		DesignLoader: ports.DesignLoaderFunc(excel.LoadDesign),
	}
	c.initServices()
	return c, nil
}

// WithSimulator replaces the simulator built from configuration.
func (c *Container) WithSimulator(sim ports.Simulator) *Container {
	c.Simulator = sim
	c.initServices()
	return c
}

// InitWithDatabase connects the summary store and rebuilds the services
// that write to it.
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		return fmt.Errorf("database is not configured (DATABASE_URL)")
	}

	db, err := postgres.Connect(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.SummaryStore = postgres.NewSummaryRepository(db)
	c.initServices()

	c.Logger.Info("[Container] Summary store connected")
	return nil
}

func (c *Container) initServices() {
	if c.Simulator == nil {
		c.Simulator = rscript.NewSimulator(c.Config.Simulator.Rscript, c.Config.Simulator.Script, c.Logger)
	}

	var stores []ports.SummarySink
	if c.SummaryStore != nil {
		stores = append(stores, c.SummaryStore)
	}

	c.MergeService = app.NewMergeService(c.DesignLoader, c.Logger)
	c.SummaryService = app.NewSummaryService(c.Logger, stores...)
	c.SimulationService = app.NewSimulationService(c.DesignLoader, c.Simulator, c.Logger)
}

// Shutdown releases the database connection, if any.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
