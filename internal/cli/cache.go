package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgeom/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the geometry and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached geometry and artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CacheOptions()
			if err != nil {
				return err
			}
			cc, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("open %s cache: %w", opts.Backend, err)
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("The %s cache cannot be cleared", opts.Backend)
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear %s cache: %w", opts.Backend, err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Location: %s", describeCache(opts))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts, err := cfg.CacheOptions()
			if err != nil {
				return err
			}
			fmt.Println(describeCache(opts))
			return nil
		},
	}
}

// describeCache names the location of a cache backend.
func describeCache(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendFile, "":
		return opts.Dir
	case cache.BackendRedis:
		return "redis://" + opts.RedisAddr
	case cache.BackendMongo:
		return "mongodb database " + opts.MongoDatabase
	}
	return opts.Backend
}
