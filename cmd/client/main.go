package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/memodiary/internal/client/cli"
	"github.com/dmitrijs2005/memodiary/internal/client/config"
	"github.com/dmitrijs2005/memodiary/internal/logging"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("%v", err)
	}

	// stdout belongs to the REPL
	logger, closer := logging.NewFileLogger(cfg.LogFile, level)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	defer app.Close()

	app.Run(ctx)

}
