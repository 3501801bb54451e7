package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashifsb/envsetup/internal/setup"
	"github.com/kashifsb/envsetup/pkg/logger"
)

const envPrefix = "ENVSETUP"

// newRootCmd builds the command tree. Flags are bound to viper so every
// setting can also come from ENVSETUP_* variables or the settings file.
func newRootCmd(ctx context.Context) *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "envsetup",
		Short: "Development environment dependency installer",
		Long: `envsetup reads a dependency file (envsetup.yaml), installs what it can
automatically and writes a Markdown report explaining how to set up the rest.`,
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initSettings(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(ctx, cmd, v)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", setup.DefaultConfigFile, "Dependency file to resolve")
	rootCmd.PersistentFlags().StringSliceP("system", "s", nil, "Only use these systems (repeatable)")
	rootCmd.PersistentFlags().String("settings", "", "Settings file (default is $HOME/.envsetup.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install dependencies and write the setup report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(ctx, cmd, v)
		},
	}
	addInstallFlags(rootCmd)
	addInstallFlags(installCmd)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve the dependency file and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := setup.Validate(ctx, options(v), cmd.OutOrStdout())
			return err
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List dependencies and what install would do with each",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := setup.List(ctx, options(v), cmd.OutOrStdout())
			return err
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter dependency file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, v, args)
		},
	}
	initCmd.Flags().String("starter", "minimal", "Starter to use (see --list)")
	initCmd.Flags().String("name", "", "Project name (default: directory name)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing dependency file")
	initCmd.Flags().Bool("list", false, "List available starters")

	rootCmd.AddCommand(installCmd, validateCmd, listCmd, initCmd)
	return rootCmd
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().String("report", "", "Write the Markdown report to this file")
	cmd.Flags().Bool("headless", false, "Run without interactive UI and print the report")
	cmd.Flags().IntP("jobs", "j", 1, "Number of installs to run in parallel")
	cmd.Flags().Duration("timeout", 0, "Time limit per install command (0 = none)")
	cmd.Flags().Bool("no-open", false, "Never open resource links")
}

// initSettings binds the invoked command's flags, reads the settings file
// and configures logging.
func initSettings(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if settings := v.GetString("settings"); settings != "" {
		v.SetConfigFile(settings)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".envsetup")
	}

	settingsErr := v.ReadInConfig()

	cfg := logger.DefaultConfig(v.GetBool("debug"))
	cfg.File = v.GetString("log-file")
	logger.InitWithConfig(cfg)

	if settingsErr == nil {
		logger.Debug("Using settings file", "file", v.ConfigFileUsed())
	} else if v.GetString("settings") != "" {
		return fmt.Errorf("read settings: %w", settingsErr)
	}
	return nil
}

func options(v *viper.Viper) setup.Options {
	opts := setup.NewOptions()
	opts.ConfigPath = v.GetString("config")
	opts.Systems = v.GetStringSlice("system")
	opts.Headless = v.GetBool("headless")
	opts.ReportPath = v.GetString("report")
	opts.Jobs = v.GetInt("jobs")
	opts.Timeout = v.GetDuration("timeout")
	opts.NoOpen = v.GetBool("no-open")
	return opts
}

func runInstall(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	opts := options(v)
	opts.Stdout = cmd.OutOrStdout()
	opts.Stderr = cmd.ErrOrStderr()

	summary, err := setup.Run(ctx, opts)
	if err != nil {
		return err
	}

	logger.Debug("Run summary", "results", len(summary.Results))
	return nil
}

func runInit(cmd *cobra.Command, v *viper.Viper, args []string) error {
	sm := setup.NewStarterManager()
	if v.GetBool("list") {
		sm.ListStarters(cmd.OutOrStdout())
		return nil
	}

	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	path, err := sm.Create(dir, v.GetString("starter"), v.GetString("name"), v.GetBool("force"))
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(".", path)
	if err != nil {
		rel = path
	}
	fmt.Fprintf(cmd.OutOrStdout(), "🎉 Created %s\n\n📋 Next steps:\n   envsetup list -c %s\n   envsetup install -c %s\n", rel, rel, rel)
	return nil
}
