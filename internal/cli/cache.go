package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridui/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.CacheOptions()
			cc, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cc.Close()

			clearer, ok := cc.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q has nothing to clear", opts.Backend)
				return nil
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %s cache", opts.Backend)
			if opts.Dir != "" && opts.Backend == cache.BackendFile {
				printDetail("Directory: %s", opts.Dir)
			}
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
			opts := c.cfg.CacheOptions()
			switch opts.Backend {
			case cache.BackendRedis:
				printKeyValue("redis", fmt.Sprintf("%s db %d", opts.Redis.Addr, opts.Redis.DB))
			case cache.BackendFile:
				fmt.Fprintln(stdout, opts.Dir)
			default:
				printWarning("Caching is disabled")
			}
			return nil
		},
	}
}
