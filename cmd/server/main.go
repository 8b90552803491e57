package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/storefront/config"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/pkg/database"
	"github.com/d60-Lab/storefront/pkg/logger"
)

// @title Storefront Notification API
// @version 1.0
// @description 订单、商品事件的通知扇出与投递服务
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront notification fan-out service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, WebSocket endpoint and delivery workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := database.InitDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := repository.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migration complete")
			return nil
		},
	}
	root.AddCommand(serveCmd, migrateCmd)
	root.RunE = serveCmd.RunE
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}
