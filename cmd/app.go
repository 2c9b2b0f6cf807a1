package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"lottery/config"
	"lottery/database"
	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/domain/services"
	"lottery/events"
	"lottery/export"
	"lottery/infrastructure/filestore"
	"lottery/infrastructure/roster"
	"lottery/repository"

	log "github.com/sirupsen/logrus"
)

// App holds the wired core shared by the bot and the operator commands
type App struct {
	Config     *config.Config
	DB         *database.DB
	Bus        *events.Bus
	Roster     entities.Roster
	Results    interfaces.ResultStore
	Authorizer interfaces.Authorizer
	Engine     interfaces.DrawEngine
	Exporter   interfaces.Exporter
	Observers  *Observers
}

// NewApp connects the configured stores, loads the roster and builds the engine
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Bus:    events.NewBus(),
	}

	if cfg.UsesDatabase() {
		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
		log.Info("Database connection established successfully")
	}

	results, err := openResultStore(cfg, app.DB)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Results = results

	rosterStore := openRosterStore(cfg, app.DB)
	app.Roster, err = rosterStore.LoadRoster(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	log.WithFields(log.Fields{
		"source":  cfg.RosterSource,
		"members": app.Roster.Size(),
	}).Info("Members roster loaded")

	app.Authorizer = services.NewAuthorizer(cfg.OperatorPasscode, cfg.ResetPasscode)
	for _, warning := range cfg.Warnings() {
		log.WithError(warning).Warn("Configuration warning")
	}

	app.Exporter, err = export.New(cfg.ExportFormat)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Observers = StartObservers(ctx, cfg, app.Bus)

	app.Engine = services.NewDrawEngine(app.Roster, app.Results, app.Authorizer, app.Bus)
	return app, nil
}

// Close waits for pending event handlers, then closes NATS, metrics and the database
func (a *App) Close() {
	a.Bus.Wait()
	a.Observers.Close()

	if a.DB != nil {
		a.DB.Close()
	}
}

// natsStreamName derives a JetStream stream name from the subject prefix
func natsStreamName(prefix string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "*", "", ">", "").Replace(prefix)) + "_EVENTS"
}

// openResultStore returns the store selected by RESULT_STORE
func openResultStore(cfg *config.Config, db *database.DB) (interfaces.ResultStore, error) {
	switch cfg.ResultStore {
	case config.ResultStorePostgres:
		return repository.NewDrawResultRepository(db), nil
	default:
		store, err := filestore.NewResultFile(cfg.ResultFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open result file: %w", err)
		}
		return store, nil
	}
}

// openRosterStore returns the roster source selected by ROSTER_SOURCE
func openRosterStore(cfg *config.Config, db *database.DB) interfaces.RosterStore {
	if cfg.RosterSource == config.RosterSourcePostgres {
		return repository.NewParticipantRepository(db)
	}
	return openRosterFile(cfg, cfg.RosterSource)
}

// openRosterFile reads ROSTER_FILE as xlsx or csv. An empty format is taken
// from the file extension.
func openRosterFile(cfg *config.Config, format string) interfaces.RosterStore {
	opts := roster.Options{
		Sheet:      cfg.RosterSheet,
		IDColumn:   cfg.RosterIDColumn,
		NameColumn: cfg.RosterNameColumn,
	}

	if format == "" || format == config.RosterSourcePostgres {
		format = config.RosterSourceXLSX
		if strings.EqualFold(filepath.Ext(cfg.RosterFile), ".csv") {
			format = config.RosterSourceCSV
		}
	}

	if format == config.RosterSourceCSV {
		return roster.NewCSVStore(cfg.RosterFile, opts)
	}
	return roster.NewXLSXStore(cfg.RosterFile, opts)
}
