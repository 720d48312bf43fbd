package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/omnisent/omnisent/internal/buildinfo"
	"github.com/omnisent/omnisent/internal/client/cli"
	"github.com/omnisent/omnisent/internal/client/config"
	"github.com/omnisent/omnisent/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewJSON(os.Stderr)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
