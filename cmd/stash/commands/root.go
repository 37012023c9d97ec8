// Package commands implements the CLI commands for the stash cache tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/stash/internal/app"
)

// CLI represents the command line interface for stash.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "stash",
		Short:         "A client-side cache for server-driven screens and remote data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().Bool("offline", false, "Treat the network as unavailable")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		offline, err := cmd.Flags().GetBool("offline")
		if err != nil {
			return err
		}
		a.SetOnline(!offline)
		return nil
	}

	rootCmd.AddCommand(c.newScreenCmd())
	rootCmd.AddCommand(c.newFetchCmd())
	rootCmd.AddCommand(c.newSeedCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(out io.Writer) {
	c.rootCmd.SetOut(out)
}
