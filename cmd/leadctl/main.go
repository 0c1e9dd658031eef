// Command leadctl is the operator CLI for the qualification pipeline.
package main

import (
	"fmt"
	"os"

	"leadqualify_backend/platform/config"
	"leadqualify_backend/platform/logger"

	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	cfg        *config.Config
	log        *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "leadctl",
	Short: "Operate the lead qualification pipeline",
	Long: `leadctl runs qualification batches by hand, lists leads waiting for
qualification, queues runs for the scheduler and manages database migrations.
Configuration is read from the environment (and .env) like the servers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		log = logger.New(cfg.Env)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func registerCommands() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPendingCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newEnqueueCmd())
	rootCmd.AddCommand(newMigrateCmd())
}
