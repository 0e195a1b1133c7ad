package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"entmatch/internal/matcher"
)

var errDisconnected = errors.New("matcher unreachable")

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check connectivity to the matcher service",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := ctx.matcherClient()
			if err != nil {
				return err
			}
			health, err := client.Health(ctx.requestContext(cmd))
			if jsonOutput {
				payload := map[string]any{"connected": err == nil, "status": health.Status}
				if err != nil {
					payload["error"] = err.Error()
				}
				if encErr := writeJSON(cmd, payload); encErr != nil {
					return encErr
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderHealth(health, err, shouldColorize(cmd.OutOrStdout())))
			}
			if err != nil {
				return fmt.Errorf("%w: %w", errDisconnected, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a status line")
	return cmd
}

func renderHealth(health matcher.Health, err error, colorize bool) string {
	if err != nil {
		return renderStatusLine("API Disconnected", statusError, err.Error(), colorize)
	}
	message := health.Status
	if health.Message != "" {
		message = fmt.Sprintf("%s (%s)", health.Status, health.Message)
	}
	return renderStatusLine("API Connected", statusOK, message, colorize)
}
