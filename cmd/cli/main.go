package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dailyreflect/internal/buildinfo"
	"github.com/dmitrijs2005/dailyreflect/internal/client/cli"
	"github.com/dmitrijs2005/dailyreflect/internal/client/config"
	"github.com/dmitrijs2005/dailyreflect/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// the REPL owns stdout, logs go to a rotating file
	logger, closer := logging.NewFileLogger(cfg.LogFile, cfg.LogLevel)
	defer closer.Close()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
