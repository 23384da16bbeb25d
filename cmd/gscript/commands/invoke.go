package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/gscript/internal/app"
	"go.trai.ch/gscript/internal/ui/output"
)

func (c *CLI) newInvokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <script> <member> [args...]",
		Short: "Call one member of a script with string arguments",
		Long: "Call one member of a script. The member is written as Member, Type.Member or * for the\n" +
			"only public member. Arguments are passed as strings and select the matching overload.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			out, err := c.app.Invoke(cmd.Context(), args[0], args[1], app.RunOptions{BuildOptions: opts, Args: args[2:]})
			if err != nil {
				return err
			}
			if s := app.FormatResult(out); s != "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	addBuildFlags(cmd)
	return cmd
}

func (c *CLI) newMembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members <script>",
		Short: "List the public members of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := buildOptions(cmd)
			if err != nil {
				return err
			}
			members, err := c.app.Members(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(members))
			for i, m := range members {
				kind := "instance"
				if m.Static {
					kind = "static"
				}
				rows[i] = []string{m.Type, kind, m.Signature}
			}
			return output.Table(cmd.OutOrStdout(), []string{"TYPE", "KIND", "SIGNATURE"}, rows)
		},
	}
	addBuildFlags(cmd)
	return cmd
}
