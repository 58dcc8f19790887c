package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"paint-bots/client/internal/app"
	"paint-bots/client/internal/config"
)

func main() {
	var configPath, envFile string
	flag.StringVar(&configPath, "config", "", "optional arena config file (yaml, json or toml)")
	flag.StringVar(&envFile, "env", ".env", "dotenv file loaded before the environment is read")
	flag.Parse()

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		logrus.Fatalf("%v", err)
	}
}
