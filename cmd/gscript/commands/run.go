package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/gscript/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [args...]",
		Short: "Compile a script if needed and run it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Run(cmd.Context(), args[0], app.RunOptions{BuildOptions: opts, Args: args[1:]})
		},
	}
	// Flags after the script name belong to the script.
	cmd.Flags().SetInterspersed(false)
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <script> [args...]",
		Short: "Run a script again whenever one of its sources changes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			checkOnly, _ := cmd.Flags().GetBool("check")
			return c.app.Watch(cmd.Context(), args[0], app.WatchOptions{
				RunOptions: app.RunOptions{BuildOptions: opts, Args: args[1:]},
				CheckOnly:  checkOnly,
			})
		},
	}
	cmd.Flags().SetInterspersed(false)
	addBuildFlags(cmd)
	cmd.Flags().Bool("check", false, "Only report diagnostics instead of running the script")
	return cmd
}
