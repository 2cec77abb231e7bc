package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		dataPath    string
		requestPath string
		chartType   string
		params      []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render chart data from a dataset",
		Long: `Render chart data from a dataset file.

The chart is described by --type and --param key=value pairs, by a request
file, or both (flags override the file). A request file with a top-level
"requests" list renders every entry as a batch.`,
		Example: `  charts render -d sales.yaml -t bar --param x_axis=region --param y_axis=amount
  charts render -d sales.arrow -r requests.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reqs, batch, err := buildRequests(requestPath, chartType, params)
			if err != nil {
				return err
			}
			src, err := readDatasetSource(dataPath)
			if err != nil {
				return err
			}
			results, err := opts.backend(cmd.ErrOrStderr()).Render(cmd.Context(), src, reqs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !batch {
				if results[0].Err != nil {
					return results[0].Err
				}
				if getOutputFormat(cmd) == OutputJSON {
					return PrintJSON(out, results[0].Response)
				}
				printChart(out, results[0].Response)
				return nil
			}
			return printBatch(cmd, results)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Dataset file (.json, .yaml, .arrow)")
	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "Chart request file (YAML or JSON)")
	cmd.Flags().StringVarP(&chartType, "type", "t", "", "Chart type")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Chart parameter as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// buildRequests merges the request file with command-line overrides.
func buildRequests(path, chartType string, pairs []string) ([]domain.ChartRequest, bool, error) {
	reqs := []domain.ChartRequest{{}}
	batch := false
	if path != "" {
		var err error
		if reqs, batch, err = readRequests(path); err != nil {
			return nil, false, err
		}
	}
	if batch && (chartType != "" || len(pairs) > 0) {
		return nil, false, fmt.Errorf("--type and --param cannot be combined with a batch request file")
	}

	overrides, err := parseParams(pairs)
	if err != nil {
		return nil, false, err
	}
	req := &reqs[0]
	if !batch {
		if chartType != "" {
			req.ChartType = chartType
		}
		if req.Parameters == nil {
			req.Parameters = map[string]any{}
		}
		for k, v := range overrides {
			req.Parameters[k] = v
		}
		if req.ChartType == "" {
			return nil, false, fmt.Errorf("chart type is required: use --type or a request file")
		}
	}
	return reqs, batch, nil
}

func printChart(out io.Writer, resp *domain.ChartResponse) {
	_, _ = fmt.Fprintf(out, "%s\n\n", resp.Title)
	columns, rows := recordTable(resp.Data)
	PrintTable(out, columns, rows)
	_, _ = fmt.Fprintln(out)
	PrintDetail(out, resp.Metadata)
}

func printBatch(cmd *cobra.Command, results []renderResult) error {
	out := cmd.OutOrStdout()
	failed := 0
	items := make([]any, len(results))
	for i, r := range results {
		if r.Err != nil {
			failed++
			items[i] = errorObject(r.Err)
			continue
		}
		items[i] = r.Response
	}

	if getOutputFormat(cmd) == OutputJSON {
		if err := PrintJSON(out, map[string]any{"results": items}); err != nil {
			return err
		}
	} else {
		for i, r := range results {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			if r.Err != nil {
				_, _ = fmt.Fprintf(out, "[%d] error: %v\n", i, r.Err)
				continue
			}
			_, _ = fmt.Fprintf(out, "[%d] ", i)
			printChart(out, r.Response)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d charts failed", failed, len(results))
	}
	return nil
}
