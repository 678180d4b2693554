package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "registry",
		Short: "CLI tool for the MetaLoot registry",
		Long: `registry is a CLI tool for the MetaLoot registry JSON API.

It signs and submits registry instructions (studios, players, custody
and transfers), drives the token ledger, and reads records back.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: REGISTRY_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Key, "key", cfg.Key, "Base58 private key used to sign (env: REGISTRY_KEY)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newKeygenCmd())
	rootCmd.AddCommand(newDeriveCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newAirdropCmd())
	rootCmd.AddCommand(newStudioCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newCustodyCmd())
	rootCmd.AddCommand(newTransferCmd())
	rootCmd.AddCommand(newRewardCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		NewOutput(cfg.Output, os.Stdout, os.Stderr).PrintError(err)
		stop()
		os.Exit(1)
	}
}
