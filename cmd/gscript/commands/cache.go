package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.trai.ch/gscript/internal/ui/output"
	"go.trai.ch/gscript/internal/ui/style"
)

func (c *CLI) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and prune the compilation cache",
	}
	cmd.AddCommand(c.newCacheListCmd())
	cmd.AddCommand(c.newCacheEvictCmd())
	cmd.AddCommand(c.newCacheCleanCmd())
	return cmd
}

func (c *CLI) newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			arts, err := c.app.CacheList(cmd.Context())
			if err != nil {
				return err
			}
			if len(arts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.Muted.Render("cache is empty"))
				return nil
			}

			rows := make([][]string, len(arts))
			for i, art := range arts {
				rows[i] = []string{
					art.Fingerprint.String(),
					art.Backend,
					string(art.Target),
					art.CreatedAt.Local().Format(time.DateTime),
					location(art.Path),
				}
			}
			return output.Table(cmd.OutOrStdout(), []string{"FINGERPRINT", "BACKEND", "TARGET", "CREATED", "LOCATION"}, rows)
		},
	}
}

func (c *CLI) newCacheEvictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evict <fingerprint-prefix>...",
		Short: "Remove cached artifacts by fingerprint prefix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evicted, err := c.app.CacheEvict(cmd.Context(), args)
			for _, fp := range evicted {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "evicted "+fp.String())
			}
			return err
		},
	}
}

func (c *CLI) newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every cached artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.CacheClean(cmd.Context())
		},
	}
}
