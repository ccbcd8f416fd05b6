// Package cli provides the ptstd command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/TheusHen/ptstd/internal/config"
	plog "github.com/TheusHen/ptstd/ptstd/log"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

type configKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "ptstd",
		Short: "ptstd - small utility toolkit",
		Long: `ptstd bundles AES/RSA helpers, a stop-and-wait message protocol over
TCP or QUIC, a worker pool, a line logger and matrix helpers.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, used, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := plog.Init(cfg.LogSinkConfig()); err != nil && !errors.Is(err, plog.ErrAlreadyInitialized) {
				return err
			}
			if used != "" {
				l := plog.WithTarget("cli")
				l.Debug().Str("file", used).Msg("using config file")
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return plog.Shutdown()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./ptstd.yaml)")
	pf.String("log-level", "", "log level (trace|debug|info|warn|error|off)")
	pf.String("log-destination", "", "log destination (console|file)")
	pf.String("log-file", "", "log file path for the file destination")
	pf.Int("workers", 0, "worker pool size")
	pf.Int("queue-size", 0, "worker pool queue size")
	pf.StringSlice("features", nil, "feature set to resolve")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "off"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newFeaturesCmd())
	rootCmd.AddCommand(newHashCmd())
	rootCmd.AddCommand(newAESCmd())
	rootCmd.AddCommand(newRSACmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newMatMulCmd())
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config loaded by PersistentPreRunE.
func getConfig(cmd *cobra.Command) *config.Config {
	if c, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return c
	}
	cfg, _, err := config.Load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func logger(component string) zerolog.Logger {
	return plog.WithTarget(component)
}
