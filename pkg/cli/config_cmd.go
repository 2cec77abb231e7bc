package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI profiles (API host, output format, render timeout)",
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetProfileCmd(),
		newConfigUseProfileCmd(),
		newConfigDeleteProfileCmd(),
	)
	return cmd
}

// loadOrDefault treats a missing config file as an empty configuration.
func loadOrDefault() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return defaultUserConfig(), nil
	}
	return cfg, err
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List profiles and mark the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), cfg)
			}
			rows := make([][]string, 0, len(cfg.Profiles))
			for _, name := range cfg.ProfileNames() {
				p := cfg.Profiles[name]
				active := ""
				if name == cfg.CurrentProfile {
					active = "*"
				}
				host := p.Host
				if host == "" {
					host = "(local)"
				}
				rows = append(rows, []string{active, name, host, p.Output, p.Timeout})
			}
			PrintTable(cmd.OutOrStdout(), []string{"active", "name", "host", "output", "timeout"}, rows)
			return nil
		},
	}
}

func newConfigSetProfileCmd() *cobra.Command {
	var name, host, output, timeout string

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a profile; only the given fields change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			p := cfg.Profiles[name]
			if flags.Changed("api-host") {
				p.Host = host
			}
			if flags.Changed("default-output") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
				p.Output = output
			}
			if flags.Changed("render-timeout") {
				p.Timeout = timeout
				if _, _, err := p.RenderTimeout(); err != nil {
					return err
				}
			}
			cfg.Profiles[name] = p
			if len(cfg.Profiles) == 1 || cfg.CurrentProfile == "" {
				cfg.CurrentProfile = name
			}
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), map[string]any{"profile": name, "settings": p, "path": ConfigPath()})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q (%s)\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&host, "api-host", "", "Chart data API URL; empty renders in-process")
	cmd.Flags().StringVar(&output, "default-output", "", "Output format for this profile (table, json)")
	cmd.Flags().StringVar(&timeout, "render-timeout", "", "Deadline for each in-process render, e.g. 30s")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.CurrentProfile = args[0]
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), map[string]string{"active_profile": args[0]})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Using profile %q\n", args[0])
			return nil
		},
	}
}

func newConfigDeleteProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-profile <name>",
		Short: "Remove a profile other than the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadOrDefault()
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			if name == cfg.CurrentProfile {
				return fmt.Errorf("profile %q is active; switch with 'charts config use-profile' first", name)
			}
			delete(cfg.Profiles, name)
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == OutputJSON {
				return PrintJSON(cmd.OutOrStdout(), map[string]string{"deleted_profile": name})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted profile %q\n", name)
			return nil
		},
	}
}
