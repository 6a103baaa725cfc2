package main

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
	"github.com/vela-games/lfsgate/config"
	"github.com/vela-games/lfsgate/logger"
	"github.com/vela-games/lfsgate/router"
	"go.uber.org/zap"

	"context"
	"os"
	"os/signal"
	"syscall"
)

// NewSigKillContext returns a Context that cancels when os.Interrupt or os.Kill is received
func NewSigKillContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	return ctx
}

func main() {
	ctx := NewSigKillContext()

	viper.SetEnvPrefix("app")
	viper.AutomaticEnv()

	cfg, err := config.GetConfig()
	if err != nil {
		log.Panicf("error getting configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel, cfg.DebugMode)
	if err != nil {
		log.Panicf("error building logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	router := router.NewRouter(zapLogger)
	err = router.InitRoutes(ctx, cfg)
	if err != nil {
		zapLogger.Fatal("error initialising routes", zap.Error(err))
	}

	err = router.Run(ctx, fmt.Sprintf(":%v", cfg.Port))
	if err != nil {
		zapLogger.Fatal("error running server", zap.Error(err))
	}

}
