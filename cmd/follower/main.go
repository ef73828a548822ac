package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/client"
	"github.com/followbot/gofollow/clob/signing"
	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/internal/follow"
	"github.com/followbot/gofollow/pkg/config"
	"github.com/followbot/gofollow/pkg/logger"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML configuration")
	envPath := flag.String("env", ".env", "path to the env file with wallet credentials")
	flag.Parse()

	// A missing env file is fine; the variables may come from the shell.
	_ = godotenv.Load(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Errorf("follower terminated: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	dataAPI := api.NewClient(cfg.DataAPI)

	var (
		executor *follow.Executor
		exitMgr  *follow.ExitManager
	)

	if !cfg.Simulation {
		key, err := signing.PrivateKeyFromHex(cfg.WalletPrivateKey)
		if err != nil {
			return fmt.Errorf("parse wallet key: %w", err)
		}

		clob := client.NewClient(
			cfg.ClobHost,
			types.Chain(cfg.ChainID),
			key,
			nil,
			client.WithSignatureType(types.SignatureType(cfg.SignatureType)),
			client.WithFunder(cfg.ProxyWalletAddress),
		)
		// Warms the connection pool so the first order skips the
		// TLS handshake.
		if ts, err := clob.GetServerTime(ctx); err != nil {
			logger.Warnf("clob connectivity check failed: %v", err)
		} else {
			logger.Debugf("clob server time %d", ts)
		}

		if _, err := clob.CreateOrDeriveAPIKey(ctx, 0); err != nil {
			return fmt.Errorf("derive API key: %w", err)
		}
		logger.Infof("trading as %s on chain %d", cfg.WalletAddress, cfg.ChainID)

		executor = follow.NewExecutor(clob,
			decimal.NewFromFloat(cfg.Copy.SizeMultiplier),
			decimal.NewFromFloat(cfg.Filter.BuyAmountLimitInUsd))

		// Exit management needs an address to watch and at least one
		// threshold; decided once here, not per tick.
		if cfg.WalletAddress != "" && cfg.HasExitThresholds() {
			exitMgr = follow.NewExitManager(clob, dataAPI, cfg.WalletAddress, cfg.Exit)
			go exitMgr.Run(ctx)
			logger.Infof("exit manager armed: tp=%.1f sl=%.1f trail=%.1f",
				cfg.Exit.TakeProfit, cfg.Exit.StopLoss, cfg.Exit.TrailingStop)
		}
	} else {
		logger.Info("simulation mode: trades are logged, never executed")
	}

	engine := follow.NewEngine(cfg, dataAPI, executor, exitMgr)
	return engine.Run(ctx)
}
