package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lottery/cmd"

	"github.com/urfave/cli/v2"
	log "github.com/sirupsen/logrus"
)

const description = `Authorized one-time lottery draw over a members roster.

Admin instructions:
  - To reset and allow a new draw, run "lottery reset" (or /lottery reset in Discord).
  - With RESULT_STORE=file you may instead delete the winners record (RESULT_FILE,
    default winners_record.json) while the service is stopped.
  - Update the members spreadsheet (ROSTER_FILE) anytime to refresh the roster;
    run "lottery roster import" when ROSTER_SOURCE=postgres.
  - Keep OPERATOR_PASSCODE and RESET_PASSCODE secure and private.`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp()
	app.Name = "lottery"
	app.Usage = "one-time authorized winner draw"
	app.Description = description
	app.Commands = cmd.Commands()
	app.Before = cmd.LoadConfig
	app.Action = cmd.RunAction

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.WithError(err).Fatal("lottery failed")
	}
}
