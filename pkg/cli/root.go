// Package cli implements the charts command-line interface. Charts are
// rendered in-process by default, or by a running chart data API when a host
// is configured.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kmmelissat/analisis-al-instante-api/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions holds the resolved persistent flags.
type rootOptions struct {
	host    string
	output  string
	profile string
	timeout time.Duration
	verbose bool
}

func (o *rootOptions) backend(errOut io.Writer) backend {
	if o.host != "" {
		return &remoteBackend{client: NewClient(o.host)}
	}
	level := slog.LevelError
	if o.verbose {
		level = slog.LevelDebug
	}
	return &localBackend{
		timeout: o.timeout,
		logger:  slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})),
	}
}

// envFlags maps persistent flags to the environment variables that may
// supply them.
var envFlags = map[string]string{
	"host":    "CHARTS_HOST",
	"output":  "CHARTS_OUTPUT",
	"timeout": "CHARTS_TIMEOUT",
}

// envOverride sets flag name from env unless the flag was given explicitly.
func envOverride(fs *pflag.FlagSet, name, env string) error {
	if fs.Changed(name) {
		return nil
	}
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	if err := fs.Set(name, v); err != nil {
		return fmt.Errorf("invalid %s %q: %w", env, v, err)
	}
	return nil
}

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if getOutputFormat(rootCmd) == OutputJSON {
			_ = PrintJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject describes err for JSON output.
func errorObject(err error) map[string]any {
	obj := map[string]any{"error": err.Error()}
	var apiErr *APIError
	var validation *domain.ValidationError
	var insufficient *domain.InsufficientDataError
	switch {
	case errors.As(err, &apiErr):
		obj["http_status"] = apiErr.HTTPStatus
		obj["code"] = apiErr.Code
		if apiErr.Field != "" {
			obj["field"] = apiErr.Field
		}
	case errors.As(err, &validation):
		obj["code"] = validation.Code
		if validation.Field != "" {
			obj["field"] = validation.Field
		}
	case errors.As(err, &insufficient):
		obj["code"] = insufficient.Code
	}
	return obj
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "charts",
		Short:         "Chart data CLI",
		Long:          "Turn tabular datasets into chart-ready data, locally or through the chart data API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				// Config file is optional
				cfg = defaultUserConfig()
			}
			p, err := cfg.ActiveProfile(opts.profile)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > profile > default
			fs := cmd.Flags()
			for name, env := range envFlags {
				if err := envOverride(fs, name, env); err != nil {
					return err
				}
			}
			if !fs.Changed("host") {
				opts.host = p.Host
			}
			if !fs.Changed("timeout") {
				d, ok, err := p.RenderTimeout()
				if err != nil {
					return err
				}
				if ok {
					opts.timeout = d
				}
			}
			if !fs.Changed("output") {
				opts.output = p.Output
				if opts.output == "" {
					opts.output = defaultOutputFormat(cmd.OutOrStdout())
				}
				_ = cmd.Root().PersistentFlags().Set("output", opts.output)
			}
			return validateOutputFormat(opts.output)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.host, "host", "", "Chart data API URL; empty renders in-process")
	pf.StringVarP(&opts.output, "output", "o", OutputTable, "Output format (table, json)")
	pf.StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")
	pf.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Deadline for each in-process chart render")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log render details to stderr")

	rootCmd.AddCommand(newRenderCmd(opts))
	rootCmd.AddCommand(newTypesCmd(opts))
	rootCmd.AddCommand(newDescribeCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
