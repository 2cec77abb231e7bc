package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information and the number of supported chart types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]any{
				"version":     version,
				"commit":      commit,
				"go":          runtime.Version(),
				"platform":    runtime.GOOS + "/" + runtime.GOARCH,
				"chart_types": len(domain.ChartTypes()),
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), info)
			}
			PrintDetail(cmd.OutOrStdout(), info)
			return nil
		},
	}
}
