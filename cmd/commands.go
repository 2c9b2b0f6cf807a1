package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"lottery/config"
	"lottery/database"
	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/domain/services"
	"lottery/events"
	"lottery/export"
	"lottery/infrastructure/filestore"
	"lottery/repository"

	"github.com/urfave/cli/v2"
	log "github.com/sirupsen/logrus"
)

const configMetadataKey = "config"

// flags
var (
	passcodeFlag = &cli.StringFlag{
		Name:     "passcode",
		Usage:    "operator passcode",
		Required: true,
	}
	resetPasscodeFlag = &cli.StringFlag{
		Name:     "reset-passcode",
		Usage:    "reset passcode",
		Required: true,
	}
	countFlag = &cli.IntFlag{
		Name:     "count",
		Usage:    "number of winners to select",
		Required: true,
	}
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "write the winners spreadsheet to this path",
	}
	forceFlag = &cli.BoolFlag{
		Name:  "force",
		Usage: "replace the stored roster even while a draw result is committed",
	}
)

// Commands returns the operator command set
func Commands() cli.Commands {
	return cli.Commands{
		runCmd,
		statusCmd,
		drawCmd,
		winnersCmd,
		resetCmd,
		exportCmd,
		rosterCmd,
		migrateCmd,
	}
}

// commands
var (
	runCmd = &cli.Command{
		Name:   "run",
		Usage:  "Start the Discord bot and wait for a shutdown signal",
		Action: RunAction,
	}
	statusCmd = &cli.Command{
		Name:   "status",
		Usage:  "Show the roster size and whether this round has been drawn",
		Action: statusAction,
	}
	drawCmd = &cli.Command{
		Name:   "draw",
		Usage:  "Pick winners for this round (one time only)",
		Flags:  []cli.Flag{passcodeFlag, countFlag, outFlag},
		Action: drawAction,
	}
	winnersCmd = &cli.Command{
		Name:   "winners",
		Usage:  "Show the winners of this round",
		Flags:  []cli.Flag{passcodeFlag, outFlag},
		Action: winnersAction,
	}
	resetCmd = &cli.Command{
		Name:   "reset",
		Usage:  "Delete the winners record and allow a new draw",
		Flags:  []cli.Flag{passcodeFlag, resetPasscodeFlag},
		Action: resetAction,
	}
	exportCmd = &cli.Command{
		Name:  "export",
		Usage: "Write the winners spreadsheet",
		Flags: []cli.Flag{
			passcodeFlag,
			&cli.StringFlag{Name: "out", Usage: "output path", Required: true},
		},
		Action: exportAction,
	}
	rosterCmd = &cli.Command{
		Name:  "roster",
		Usage: "Inspect or import the members roster",
		Subcommands: cli.Commands{
			{
				Name:   "show",
				Usage:  "List the members eligible for the draw",
				Action: rosterShowAction,
			},
			{
				Name:   "import",
				Usage:  "Copy ROSTER_FILE into the participants table",
				Flags:  []cli.Flag{forceFlag},
				Action: rosterImportAction,
			},
		},
	}
	migrateCmd = &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: cli.Commands{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: migrateUpAction,
			},
			{
				Name:      "down",
				Usage:     "Roll back migrations",
				ArgsUsage: "[steps]",
				Action:    migrateDownAction,
			},
			{
				Name:   "status",
				Usage:  "Show the current schema version",
				Action: migrateStatusAction,
			},
		},
	}
)

// LoadConfig loads the configuration into the app metadata and sets up logging
func LoadConfig(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	SetupLogging(cfg)
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]interface{}{}
	}
	c.App.Metadata[configMetadataKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configMetadataKey].(*config.Config); ok {
		return cfg
	}
	return config.Get()
}

// withApp builds the application for a single command and closes it afterwards
func withApp(c *cli.Context, fn func(ctx context.Context, app *App) error) error {
	ctx := c.Context
	app, err := NewApp(ctx, configFrom(c))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

// RunAction starts the long-running service
func RunAction(c *cli.Context) error {
	return Run(c.Context, configFrom(c))
}

func statusAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		state, err := app.Engine.Status(ctx)
		if err != nil {
			return err
		}

		w := c.App.Writer
		fmt.Fprintf(w, "members: %d\n", app.Roster.Size())
		fmt.Fprintf(w, "state:   %s\n", state)
		if state.IsLocked() {
			fmt.Fprintln(w, "A draw has already been conducted. Use `winners` to see it or `reset` to start a new round.")
		}
		return nil
	})
}

func drawAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		if err := authorizeOperator(app, c.String("passcode")); err != nil {
			return err
		}

		result, err := app.Engine.PickWinners(ctx, entities.DrawRequest{RequestedCount: c.Int("count")})
		if err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, "Winners selected!")
		printWinners(c.App.Writer, result)

		// The draw is committed before the export runs. An export failure
		// leaves the round locked and is reported, not returned.
		if err := writeExport(c, app.Exporter, result); err != nil {
			log.WithError(err).WithField("draw_id", result.ID).Error("Failed to export committed draw")
			fmt.Fprintf(c.App.Writer, "Draw committed and locked, but the export failed: %v\n", err)
			fmt.Fprintln(c.App.Writer, "Run `lottery export` to write the spreadsheet again.")
		}
		return nil
	})
}

func winnersAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		if err := authorizeOperator(app, c.String("passcode")); err != nil {
			return err
		}

		result, err := app.Engine.CurrentResult(ctx)
		if err != nil {
			return err
		}

		printWinners(c.App.Writer, result)
		return writeExport(c, app.Exporter, result)
	})
}

func exportAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		if err := authorizeOperator(app, c.String("passcode")); err != nil {
			return err
		}

		result, err := app.Engine.CurrentResult(ctx)
		if err != nil {
			return err
		}
		return writeExport(c, app.Exporter, result)
	})
}

func resetAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		if err := authorizeOperator(app, c.String("passcode")); err != nil {
			return err
		}

		if err := app.Engine.Reset(ctx, c.String("reset-passcode")); err != nil {
			return err
		}

		fmt.Fprintln(c.App.Writer, "Winners record deleted. You can now run a new draw.")
		return nil
	})
}

func rosterShowAction(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, app *App) error {
		fmt.Fprintf(c.App.Writer, "%d members loaded\n", app.Roster.Size())
		return printRoster(c.App.Writer, app.Roster)
	})
}

func rosterImportAction(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to import the roster")
	}

	if cfg.ResultStore == config.ResultStoreFile && !c.Bool("force") {
		store, err := filestore.NewResultFile(cfg.ResultFile)
		if err != nil {
			return err
		}
		locked, err := store.Exists(ctx)
		if err != nil {
			return err
		}
		if locked {
			return fmt.Errorf("%w: reset the round before replacing the roster", entities.ErrAlreadyDrawn)
		}
	}

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	bus := events.NewBus()
	observers := StartObservers(ctx, cfg, bus)
	defer func() {
		bus.Wait()
		observers.Close()
	}()

	source := openRosterFile(cfg, fileRosterFormat(cfg))
	importer := services.NewRosterImportService(source, cfg.RosterFile, repository.NewUnitOfWorkFactory(db, bus))

	count, err := importer.Import(ctx, c.Bool("force"))
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%d members imported from %s\n", count, cfg.RosterFile)
	return nil
}

func migrateUpAction(c *cli.Context) error {
	url, err := migrationURL(c)
	if err != nil {
		return err
	}
	return database.MigrateUp(url)
}

func migrateDownAction(c *cli.Context) error {
	url, err := migrationURL(c)
	if err != nil {
		return err
	}

	steps := 1
	if c.Args().Present() {
		steps, err = strconv.Atoi(c.Args().First())
		if err != nil {
			return fmt.Errorf("invalid steps value %q: %w", c.Args().First(), err)
		}
	}
	return database.MigrateDown(url, steps)
}

func migrateStatusAction(c *cli.Context) error {
	url, err := migrationURL(c)
	if err != nil {
		return err
	}

	status, err := database.MigrateStatus(url)
	if err != nil {
		return err
	}

	if !status.Applied {
		fmt.Fprintln(c.App.Writer, "No migrations applied")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "version: %d\ndirty:   %t\n", status.Version, status.Dirty)
	return nil
}

func migrationURL(c *cli.Context) (string, error) {
	cfg := configFrom(c)
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL is required for migrations")
	}
	return cfg.GetDatabaseURL(), nil
}

// authorizeOperator checks the operator passcode, reporting failures on the bus
func authorizeOperator(app *App, passcode string) error {
	if app.Authorizer.CheckOperator(passcode) {
		return nil
	}

	if err := app.Bus.Publish(events.AuthorizationFailedEvent{Role: "operator"}); err != nil {
		log.WithError(err).Warn("Failed to publish authorization failure")
	}
	return fmt.Errorf("invalid passcode, access denied: %w", entities.ErrUnauthorized)
}

// fileRosterFormat is the file format for ROSTER_FILE when importing
func fileRosterFormat(cfg *config.Config) string {
	if cfg.RosterSource == config.RosterSourcePostgres {
		return ""
	}
	return cfg.RosterSource
}

func writeExport(c *cli.Context, exporter interfaces.Exporter, result *entities.DrawResult) error {
	path := c.String("out")
	if path == "" {
		return nil
	}
	if filepath.Ext(path) == "" {
		path = filepath.Join(path, export.FileName(exporter))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := exporter.Export(f, result); err != nil {
		f.Close()
		return fmt.Errorf("failed to export winners: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "Winners saved to %s\n", path)
	return nil
}

func printWinners(w io.Writer, result *entities.DrawResult) {
	fmt.Fprintf(w, "draw %s at %s: %d of %d members\n",
		result.ID, result.CreatedAt.Format("2006-01-02 15:04:05 MST"), len(result.Winners), result.RosterSize)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tID\tNAME")
	for i, p := range result.Winners {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, p.ID, p.DisplayName())
	}
	tw.Flush()
}

func printRoster(w io.Writer, roster entities.Roster) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range roster.Participants {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.DisplayName())
	}
	return tw.Flush()
}
