package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"grocerysearch/internal/cache"
	"grocerysearch/internal/repository"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(state *cliState) *cobra.Command {
	var (
		migrate bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import products from a JSON array or NDJSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := repository.LoadDocumentsFile(args[0])
			if err != nil {
				return err
			}
			state.log.Info("loaded products", zap.String("file", args[0]), zap.Int("count", len(docs)))

			repo, err := state.openPostgres()
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			if migrate {
				if err := repo.Migrate(ctx); err != nil {
					return err
				}
			}

			var progress func()
			if !quiet {
				bar := newImportBar(len(docs))
				defer func() { _ = bar.Finish() }()
				progress = func() { _ = bar.Add(1) }
			}

			inserted, err := repo.InsertProducts(ctx, docs, progress)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			state.log.Info("import complete", zap.Int("inserted", inserted))

			invalidateCategories(ctx, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migration before importing")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	return cmd
}

func newImportBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("importing"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("products"),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}

// invalidateCategories drops the cached category listing so the server sees new categories
func invalidateCategories(ctx context.Context, state *cliState) {
	if !state.cfg.Cache.Enabled() {
		return
	}
	c, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     state.cfg.Cache.Addr,
		Password: state.cfg.Cache.Password,
		DB:       state.cfg.Cache.DB,
		Prefix:   state.cfg.Cache.Prefix,
		TTL:      time.Duration(state.cfg.Cache.TTLSeconds) * time.Second,
	})
	if err != nil {
		state.log.Warn("category cache not invalidated", zap.Error(err))
		return
	}
	defer c.Close()

	if err := c.InvalidateCategories(ctx); err != nil {
		state.log.Warn("category cache not invalidated", zap.Error(err))
	}
}
