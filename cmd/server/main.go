package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/dailyreflect/internal/buildinfo"
	"github.com/dmitrijs2005/dailyreflect/internal/server"
	"github.com/dmitrijs2005/dailyreflect/internal/server/config"
)

// startupTimeout bounds connecting to Postgres and migrating.
const startupTimeout = 30 * time.Second

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	app, err := server.NewApp(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	app.Run(context.Background())
}
