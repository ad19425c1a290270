// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/observability"
)

// contextKey is a private type for context keys owned by this package.
type contextKey string

const configKey contextKey = "config"

// envPrefix is the prefix of every environment override, e.g. SOKO_BACKEND_BASE_URL.
const envPrefix = "SOKO"

// NewRootCommand builds a fresh command tree. Every call gets its own viper
// instance, so the interactive shell can build one per line without flags or
// config leaking between executions.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "soko",
		Short: "SOKO is a terminal client for OSINT username investigations.",
		Long: `soko drives a SOKO investigation backend from the terminal: start a
username investigation, browse the investigation list, read the risk report
and export the relationship graph.

Run without arguments to open the interactive shell.`,
		// Version is set at build time. See cmd/version.go.
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				// Make sure the failure is visible even without a configured logger.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "soko"})
				return err
			}

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting soko", zap.String("version", Version))

			// Subcommands read the validated config from their context.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "backend base URL (overrides backend.base_url)")
	rootCmd.PersistentFlags().String("theme", "", "theme for this invocation only (dark, light, midnight)")
	_ = v.BindPFlag("backend.base_url", rootCmd.PersistentFlags().Lookup("backend"))
	rootCmd.SetVersionTemplate(`{{printf "%s version %s\n" .Name .Version}}`)

	rootCmd.AddCommand(
		newVersionCmd(),
		newHealthCmd(),
		newListCmd(),
		newInvestigateCmd(),
		newShowCmd(),
		newDeleteCmd(),
		newGraphCmd(),
		newThemeCmd(),
		newWatchCmd(),
		newLogsCmd(),
		newMockBackendCmd(),
	)
	return rootCmd
}

// Execute runs the root command with a signal-aware context. Failures are
// logged here; the caller only maps them to an exit code.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			observability.GetLogger().Info("Command aborted", zap.Error(err))
		} else {
			reportError(rootCmd, err)
		}
	}
	observability.Sync()
	return err
}

// reportError prints err for the user and records it in the log.
func reportError(cmd *cobra.Command, err error) {
	fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	observability.GetLogger().Debug("Command execution failed", zap.Error(err))
}

// LoadConfig resolves the configuration the same way the root command does,
// for callers that run outside cobra (the interactive shell).
func LoadConfig(cfgFile string) (*config.Config, error) {
	return loadConfig(viper.New(), cfgFile)
}

func loadConfig(v *viper.Viper, cfgFile string) (*config.Config, error) {
	config.SetDefaults(v)
	if err := initializeConfig(v, cfgFile); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load or validate config: %w", err)
	}
	return cfg, nil
}

// initializeConfig reads .env, the config file and SOKO_* variables into v.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and environment apply.
	}
	return nil
}

// getConfigFromContext retrieves the config stored by PersistentPreRunE.
func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not found in context")
	}
	return cfg, nil
}
