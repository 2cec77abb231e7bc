package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newTypesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List chart types and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			types, err := opts.backend(cmd.ErrOrStderr()).Types(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), types)
			}
			rows := make([][]string, len(types))
			for i, t := range types {
				rows[i] = []string{string(t.Type), strings.Join(t.Required, ","), strings.Join(t.Optional, ",")}
			}
			PrintTable(cmd.OutOrStdout(), []string{"type", "required", "optional"}, rows)
			return nil
		},
	}
}
