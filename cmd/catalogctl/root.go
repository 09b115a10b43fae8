package main

import (
	"os"

	"grocerysearch/internal/config"
	"grocerysearch/internal/logger"
	"grocerysearch/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cliState struct {
	cfgFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the grocery product catalog",
		Long:          `catalogctl creates the catalog schema and imports product exports (JSON array or NDJSON) into PostgreSQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if state.cfgFile != "" {
				if err := os.Setenv("CONFIG_FILE", state.cfgFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := cfg.Logging.Level
			if state.verbose {
				level = "debug"
			}
			log, err := logger.New("console", level)
			if err != nil {
				return err
			}

			state.cfg = cfg
			state.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.log != nil {
				_ = state.log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&state.cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newMigrateCmd(state))
	rootCmd.AddCommand(newImportCmd(state))

	return rootCmd
}

func (s *cliState) openPostgres() (*repository.PostgresRepository, error) {
	return repository.NewPostgresRepository(
		s.cfg.GetPostgreSQLDSN(),
		s.cfg.PostgreSQL.MaxConnections,
		s.cfg.PostgreSQL.MaxIdleConnections,
	)
}
