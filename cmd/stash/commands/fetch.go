package commands

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
)

func (c *CLI) newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <endpoint> [param=value...]",
		Short: "Fetch remote data, serving cached results when offline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make(map[string]string, len(args)-1)
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found || key == "" {
					return zerr.With(zerr.New("invalid parameter, expected key=value"), "argument", arg)
				}
				params[key] = value
			}

			offset, err := cmd.Flags().GetInt("offset")
			if err != nil {
				return err
			}

			if offset > 0 {
				value, page, err := c.app.NextPage(cmd.Context(), args[0], offset)
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(value, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(out))
				if page.HasNext {
					cmd.Println("more pages available")
				}
				return nil
			}

			value, stale, err := c.app.FetchData(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			if stale {
				cmd.PrintErrln("warning: serving stale data")
			}
			return nil
		},
	}

	cmd.Flags().Int("offset", 0, "Fetch the page starting at this item offset")

	return cmd
}
