package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/memodiary/internal/flagx"
	"github.com/dmitrijs2005/memodiary/internal/logging"
	"github.com/dmitrijs2005/memodiary/internal/server"
	"github.com/dmitrijs2005/memodiary/internal/server/auth"
	"github.com/dmitrijs2005/memodiary/internal/server/config"
)

func main() {

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	// -issue-token <user> prints a development token and exits
	if user := flagx.StringFlag(os.Args[1:], "issue-token"); user != "" {
		token, err := auth.GenerateToken(user, []byte(cfg.SecretKey), cfg.AccessTokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("%v", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
