package main

import (
	"context"
	"fmt"

	"chain-registry/internal/adapter/rpc"
	"chain-registry/internal/adapter/storage/memory"
	"chain-registry/internal/application"
	"chain-registry/internal/config"
	"chain-registry/internal/logger"
	"chain-registry/internal/metrics"
	"chain-registry/internal/registry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "chainctl",
	Short:        "Query the chain registry and probe chain RPC endpoints",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "configs", "directory holding config.yaml")
	rootCmd.PersistentFlags().String("catalog", "", "catalog file overriding catalog.path")
	rootCmd.PersistentFlags().Bool("chainlist", false, "supplement the catalog from chainid.network")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (logs go to stderr)")
	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")
}

// loadRegistry loads configuration and the registry the way the API server does.
func loadRegistry(cmd *cobra.Command) (*config.Config, *registry.Registry, *zap.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if catalogPath, _ := cmd.Flags().GetString("catalog"); catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if useChainlist, _ := cmd.Flags().GetBool("chainlist"); useChainlist {
		cfg.Chainlist.Enabled = true
	}
	cfg.Logger.Level, _ = cmd.Flags().GetString("log-level")
	cfg.Logger.Encoding = "console"

	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	sources, err := application.SourcesFromConfig(*cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	reg, err := application.LoadRegistry(commandContext(cmd), log, sources)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Debug("Registry ready", zap.Int("count", reg.Len()))
	return cfg, reg, log, nil
}

func newService(cmd *cobra.Command) (*application.Service, error) {
	cfg, reg, log, err := loadRegistry(cmd)
	if err != nil {
		return nil, err
	}
	return application.NewChainService(
		commandContext(cmd), reg, memory.NewCacheRepository(*cfg, log), rpc.NewChecker(log),
		metrics.NewCollector(""), log, *cfg,
	), nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
