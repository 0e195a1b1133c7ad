package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"entmatch/internal/textutil"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var details bool

	cmd := &cobra.Command{
		Use:   "match <query...>",
		Short: "Match one name against the entity list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.matcherClient()
			if err != nil {
				return err
			}
			query := textutil.CleanName(strings.Join(args, " "))
			outcome, err := client.MatchSingle(ctx.requestContext(cmd), query)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, outcome)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSingleOutcome(outcome, details, shouldColorize(cmd.OutOrStdout())))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw outcome as JSON")
	cmd.Flags().BoolVar(&details, "details", false, "Show per-signal similarity scores")
	return cmd
}
