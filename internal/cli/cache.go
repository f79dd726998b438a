package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boardview/pkg/cache"
	"github.com/matzehuels/boardview/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached bounds and board images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == cache.BackendNone {
				printInfo("Cache is disabled")
				return nil
			}

			cc, err := cache.Open(cmd.Context(), cfg.CacheOptions())
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", cfg.Cache.Backend)
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			loc, _ := cacheLocation(cfg)
			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", loc)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the render cache is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			loc, err := cacheLocation(cfg)
			if err != nil {
				return fmt.Errorf("get cache location: %w", err)
			}
			fmt.Println(loc)
			return nil
		},
	}
}

// cacheLocation describes where the configured backend keeps its entries:
// a directory for the file cache, a server address otherwise.
func cacheLocation(cfg *config.Config) (string, error) {
	switch cfg.Cache.Backend {
	case cache.BackendNone:
		return "(disabled)", nil
	case cache.BackendRedis:
		return cfg.Cache.RedisURL, nil
	case cache.BackendMongo:
		return cfg.Cache.MongoURI, nil
	}
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cache.DefaultDir(appName)
}
