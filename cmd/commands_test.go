package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lottery/config"
	"lottery/domain/entities"
	"lottery/infrastructure/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newTestCLI(t *testing.T) (*cli.App, *bytes.Buffer, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	rosterFile := filepath.Join(dir, "members.csv")
	require.NoError(t, os.WriteFile(rosterFile, []byte("Member ID,Name\nM001,Ada\nM002,Grace\nM003,Linus\nM004,Ken\n"), 0o644))

	cfg := config.NewTestConfig()
	cfg.RosterSource = config.RosterSourceCSV
	cfg.RosterFile = rosterFile
	cfg.RosterNameColumn = "Name"
	cfg.ResultFile = filepath.Join(dir, "winners_record.json")
	cfg.ExportFormat = "csv"

	var out bytes.Buffer
	app := cli.NewApp()
	app.Name = "lottery"
	app.Commands = Commands()
	app.Writer = &out
	app.ErrWriter = &out
	app.Metadata = map[string]interface{}{configMetadataKey: cfg}
	app.ExitErrHandler = func(*cli.Context, error) {}

	return app, &out, cfg
}

func runCLI(app *cli.App, args ...string) error {
	return app.RunContext(context.Background(), append([]string{"lottery"}, args...))
}

func TestCommands_DrawLifecycle(t *testing.T) {
	app, out, cfg := newTestCLI(t)

	require.NoError(t, runCLI(app, "status"))
	assert.Contains(t, out.String(), "members: 4")
	assert.Contains(t, out.String(), "state:   UNLOCKED")

	out.Reset()
	exportDir := t.TempDir()
	require.NoError(t, runCLI(app, "draw", "--passcode", cfg.OperatorPasscode, "--count", "2", "--out", exportDir))
	assert.Contains(t, out.String(), "Winners selected!")
	assert.Contains(t, out.String(), "2 of 4 members")

	exported, err := os.ReadFile(filepath.Join(exportDir, "lottery_winners.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Rank,Member ID,Name", lines[0])

	err = runCLI(app, "draw", "--passcode", cfg.OperatorPasscode, "--count", "1")
	assert.ErrorIs(t, err, entities.ErrAlreadyDrawn)

	out.Reset()
	require.NoError(t, runCLI(app, "winners", "--passcode", cfg.OperatorPasscode))
	assert.Contains(t, out.String(), "RANK")
	assert.Equal(t, 3, strings.Count(out.String(), "\n")-1)

	err = runCLI(app, "reset", "--passcode", cfg.OperatorPasscode, "--reset-passcode", "wrong")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	out.Reset()
	require.NoError(t, runCLI(app, "reset", "--passcode", cfg.OperatorPasscode, "--reset-passcode", cfg.ResetPasscode))
	assert.Contains(t, out.String(), "Winners record deleted")

	err = runCLI(app, "winners", "--passcode", cfg.OperatorPasscode)
	assert.ErrorIs(t, err, entities.ErrNotLocked)
}

func TestCommands_WrongPasscode(t *testing.T) {
	app, _, _ := newTestCLI(t)

	err := runCLI(app, "draw", "--passcode", "guess", "--count", "1")
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	require.NoError(t, runCLI(app, "status"))
}

func TestCommands_DrawExportFailureKeepsLock(t *testing.T) {
	app, out, cfg := newTestCLI(t)
	unwritable := filepath.Join(t.TempDir(), "missing", "winners.csv")

	require.NoError(t, runCLI(app, "draw", "--passcode", cfg.OperatorPasscode, "--count", "2", "--out", unwritable))
	assert.Contains(t, out.String(), "Winners selected!")
	assert.Contains(t, out.String(), "Draw committed and locked, but the export failed")
	assert.NoFileExists(t, unwritable)

	out.Reset()
	require.NoError(t, runCLI(app, "status"))
	assert.Contains(t, out.String(), "state:   LOCKED")

	err := runCLI(app, "draw", "--passcode", cfg.OperatorPasscode, "--count", "1")
	assert.ErrorIs(t, err, entities.ErrAlreadyDrawn)

	exportDir := t.TempDir()
	require.NoError(t, runCLI(app, "export", "--passcode", cfg.OperatorPasscode, "--out", exportDir))
	assert.FileExists(t, filepath.Join(exportDir, "lottery_winners.csv"))
}

func TestCommands_RosterShow(t *testing.T) {
	app, out, _ := newTestCLI(t)

	require.NoError(t, runCLI(app, "roster", "show"))
	assert.Contains(t, out.String(), "4 members loaded")
	assert.Contains(t, out.String(), "M003")
	assert.Contains(t, out.String(), "Linus")
}

func TestCommands_MissingRoster(t *testing.T) {
	app, _, cfg := newTestCLI(t)
	cfg.RosterFile = filepath.Join(t.TempDir(), "missing.csv")

	err := runCLI(app, "status")
	assert.ErrorIs(t, err, entities.ErrMissingData)
}

func TestCommands_MigrateRequiresDatabase(t *testing.T) {
	app, _, _ := newTestCLI(t)

	err := runCLI(app, "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestOpenRosterFile(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()

	cfg.RosterFile = "members.CSV"
	_, ok := openRosterFile(cfg, "").(*roster.CSVStore)
	assert.True(t, ok)

	cfg.RosterFile = "members_data.xlsx"
	_, ok = openRosterFile(cfg, config.RosterSourcePostgres).(*roster.XLSXStore)
	assert.True(t, ok)

	_, ok = openRosterFile(cfg, config.RosterSourceCSV).(*roster.CSVStore)
	assert.True(t, ok)
}

func TestNATSStreamName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "LOTTERY_EVENTS", natsStreamName("lottery"))
	assert.Equal(t, "EGSA_LOTTERY_EVENTS", natsStreamName("egsa.lottery"))
}
