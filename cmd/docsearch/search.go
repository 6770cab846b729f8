package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/pkg/sdk"
)

func newSearchCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search an owner's documents and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(ctx context.Context, c *sdk.Client) error {
				res, err := c.Search(ctx, owner, strings.Join(args, " "))
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the SDK
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner whose documents are searched")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newReembedCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "reembed",
		Short: "Compute embeddings for an owner's documents stored without one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *sdk.Client) error {
				report, err := c.Reembed(ctx, owner)
				if err != nil {
					return err //nolint:wrapcheck // already wrapped by the SDK
				}
				return printJSON(cmd, report)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner whose documents are re-embedded")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// withClient builds an in-process SDK client from the configuration and runs fn with it.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *sdk.Client) error) error {
	_, cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts, err := sdkOptions(&cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := sdk.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer client.Close()

	return fn(ctx, client)
}

// sdkOptions maps the server configuration onto SDK options.
func sdkOptions(cfg *config.Config, logger *zap.Logger) ([]sdk.Option, error) {
	opts := []sdk.Option{
		sdk.WithLogger(logger),
		sdk.WithKeyPrefix(cfg.Storage.KeyPrefix),
		sdk.WithSearchConfig(cfg.SearchSettings()),
		sdk.WithBackfillWorkers(cfg.Backfill.Workers),
	}

	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		if len(cfg.Database.Addrs) == 0 {
			return nil, errors.New("database.addrs is required")
		}
		if cfg.Database.Driver == config.DriverValkey {
			opts = append(opts, sdk.WithValkey(cfg.Database.Addrs[0], cfg.Database.Password))
		} else {
			opts = append(opts, sdk.WithRedis(cfg.Database.Addrs[0], cfg.Database.Password))
		}
	case config.DriverBadger:
		opts = append(opts, sdk.WithBadger(cfg.Database.Path))
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	// The SDK adds its own cache layer on top, so the chains are built without one.
	embs, err := buildEmbedders(cfg, nil, logger)
	if err != nil {
		return nil, err
	}
	if embs.query != nil {
		opts = append(opts, sdk.WithEmbedder(embs.query), sdk.WithDocumentEmbedder(embs.document))
		if cfg.Embedding.Cache.Enabled {
			opts = append(opts,
				sdk.WithEmbeddingCache(time.Duration(cfg.Embedding.Cache.TTLSec)*time.Second),
				sdk.WithEmbeddingModel(cfg.Embedding.Model),
			)
		}
	}

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}
	if generator != nil {
		opts = append(opts, sdk.WithGenerator(generator))
	}
	return opts, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
