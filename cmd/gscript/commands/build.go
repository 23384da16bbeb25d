package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/gscript/internal/ui/style"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <script>",
		Short: "Report diagnostics without producing an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			diags, err := c.app.Check(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if len(diags) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), style.Success.Render(style.Check+" no problems found"))
			}
			return nil
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <script>",
		Short: "Compile a script into the cache and print the artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			res, err := c.app.Compile(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			art := res.Artifact
			state := "compiled"
			if res.Cached {
				state = "cached"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s (%s, %s)\n",
				style.Success.Render(style.Check), art.Fingerprint, style.Arrow, location(art.Path), art.Backend, state)
			return err
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func location(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}
