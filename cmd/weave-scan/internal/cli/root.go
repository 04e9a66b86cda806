// Package cli wires the weave-scan commands: a cobra root command with
// per-verb subcommands, flags loaded through viper.
package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	timeoutFlag time.Duration
	ipv4Flag    bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "weave-scan",
	Short: "Discover Matter operational and commissionable nodes over mDNS.",
	Long: `weave-scan drives the weave-go mDNS Scanner core from the command line:
it discovers commissionable nodes offering themselves for pairing and
operational nodes already joined to a fabric.`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path (YAML)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 5*time.Second, "discovery timeout")
	rootCmd.PersistentFlags().BoolVar(&ipv4Flag, "ipv4", false, "enable IPv4 address queries alongside IPv6")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("ipv4", rootCmd.PersistentFlags().Lookup("ipv4"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newFindCommand())
	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newShellCommand())
}

func loadConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	timeoutFlag = viper.GetDuration("timeout")
	ipv4Flag = viper.GetBool("ipv4")
	logLevel = viper.GetString("log-level")
	return nil
}

// Execute is the entrypoint for the CLI application.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger() *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
