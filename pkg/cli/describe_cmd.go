package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDescribeCmd(opts *rootOptions) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarise a dataset: roles, missing values and numeric statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := readDatasetSource(dataPath)
			if err != nil {
				return err
			}
			sum, err := opts.backend(cmd.ErrOrStderr()).Describe(cmd.Context(), src)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), sum)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%d rows, %d columns\n\n", sum.Shape[0], sum.Shape[1])
			rows := make([][]string, 0, len(sum.Columns))
			for _, name := range sum.Columns {
				row := []string{name, string(sum.DataTypes[name]), strconv.Itoa(sum.MissingValues[name]), "", "", "", ""}
				if d, ok := sum.SummaryStats[name]; ok {
					row[3] = formatValue(d.Mean)
					row[4] = formatValue(d.Std)
					row[5] = formatValue(d.Min)
					row[6] = formatValue(d.Max)
				}
				rows = append(rows, row)
			}
			PrintTable(out, []string{"column", "role", "missing", "mean", "std", "min", "max"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Dataset file (.json, .yaml, .arrow)")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}
