package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/kTowkA/driveproxy/internal/cli"
	"github.com/kTowkA/driveproxy/internal/clipboard"
	"github.com/kTowkA/driveproxy/internal/notify"
	"github.com/kTowkA/driveproxy/internal/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand(cli.Deps{
		Copier:    clipboard.NewWriter(),
		Prober:    probe.NewChecker(),
		Presenter: notify.NewLogPresenter(os.Stderr),
	}).ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}
