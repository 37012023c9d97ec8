package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stash/internal/adapters/bundle"
)

func (c *CLI) newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <bundle.json>",
		Short: "Pre-populate the screen cache from a sync bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screens, err := bundle.Load(args[0])
			if err != nil {
				return err
			}

			inserted := c.app.Seed(cmd.Context(), screens)
			cmd.Printf("seeded %d of %d screens\n", inserted, len(screens))
			return nil
		},
	}
}
