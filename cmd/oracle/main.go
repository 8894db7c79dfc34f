package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hot-dao/hot-validation-oracle/internal/config"
	"github.com/hot-dao/hot-validation-oracle/internal/events"
	"github.com/hot-dao/hot-validation-oracle/internal/health"
	"github.com/hot-dao/hot-validation-oracle/internal/httpapi"
	"github.com/hot-dao/hot-validation-oracle/internal/oracletypes"
	"github.com/hot-dao/hot-validation-oracle/internal/orchestrator"
	"github.com/hot-dao/hot-validation-oracle/internal/transport"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/evm"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/near"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/solana"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/stellar"
	"github.com/hot-dao/hot-validation-oracle/internal/verifiers/ton"
	"github.com/hot-dao/hot-validation-oracle/internal/wallet"
)

var configPath = flag.String("config", "config/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	logger := setupLogger()
	logger.Info().Str("service", "oracle").Str("config", *configPath).Msg("starting hot validation oracle")

	cfg, err := config.LoadApp(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Info().Int("chains", len(cfg.Chains)).Msg("configuration loaded")

	orch := buildOrchestrator(cfg.Chains)

	publisher, err := events.NewPublisher(events.Config{
		URLs:    cfg.Events.URLs,
		Stream:  cfg.Events.Stream,
		Subject: cfg.Events.Subject,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect outcome publisher")
	}
	orch.Events = publisher
	defer publisher.Close()

	observer := health.NewObserver(cfg.Chains)
	healthCtx, cancelHealth := context.WithCancel(context.Background())
	go observer.Run(healthCtx)
	defer cancelHealth()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := httpapi.NewServer(addr, cfg.Server.AuthSecret, orch, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()
	logger.Info().Str("address", addr).Msg("http server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during shutdown")
	}
	logger.Info().Msg("oracle stopped")
}

// buildOrchestrator constructs one verifier pool per configured chain and
// wires them into an Orchestrator. EVM chains get one pool per distinct
// chain id configured; NEAR/Stellar/TON/Solana get at most one pool each.
func buildOrchestrator(chains oracletypes.ValidationConfig) *orchestrator.Orchestrator {
	orch := &orchestrator.Orchestrator{
		Evm: make(map[uint64]evm.Pool),
	}
	client := transport.New()

	for chainID, chainCfg := range chains {
		switch {
		case chainID.IsNear():
			nearPool := near.Pool{
				Threshold: chainCfg.Threshold,
				Endpoints: newEndpoints(chainCfg.Servers, func(url string) near.Endpoint {
					return near.Endpoint{URL: url, Client: client}
				}),
			}
			orch.Near = nearPool
			orch.Wallet = wallet.Resolver{Near: nearPool}
		case chainID.IsStellar():
			orch.Stellar = stellar.Pool{
				Threshold: chainCfg.Threshold,
				Endpoints: newEndpoints(chainCfg.Servers, func(url string) stellar.Endpoint {
					return stellar.Endpoint{URL: url, Client: client}
				}),
			}
		case chainID.IsTon(), chainID.IsTonV2():
			orch.Ton = ton.Pool{
				Threshold: chainCfg.Threshold,
				Endpoints: newEndpoints(chainCfg.Servers, func(url string) ton.Endpoint {
					return ton.Endpoint{URL: url, Client: client}
				}),
			}
		case chainID.IsSolana():
			orch.Solana = solana.Pool{
				Threshold: chainCfg.Threshold,
				Endpoints: newEndpoints(chainCfg.Servers, solana.NewEndpoint),
			}
		case chainID.IsEvm():
			id, _ := chainID.EvmChainID()
			orch.Evm[id] = evm.Pool{
				Threshold: chainCfg.Threshold,
				Endpoints: newEndpoints(chainCfg.Servers, func(url string) evm.Endpoint {
					return evm.Endpoint{URL: url, Client: client}
				}),
			}
		}
	}
	return orch
}

// newEndpoints applies build to every configured server URL.
func newEndpoints[T any](servers []string, build func(string) T) []T {
	out := make([]T, len(servers))
	for i, url := range servers {
		out[i] = build(url)
	}
	return out
}

func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if os.Getenv("ORACLE_ENV") == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Caller().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()
}
