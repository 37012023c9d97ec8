package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func (c *CLI) newScreenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "screen <key>",
		Short: "Load a screen definition, from cache when fresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen, err := c.app.LoadScreen(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(screen, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
}
