package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"entmatch/internal/config"
	"entmatch/internal/query"
	"entmatch/internal/textutil"
)

const quitCommand = ":quit"

// syncWriter serializes writes from the controller callback and the input loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var trigger string
	var details bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Interactive name search reading queries from stdin",
		Long: "Reads one query per line. In submit mode every line is sent as soon as it is read. " +
			"In auto mode each line counts as an edit and the query is sent once input goes quiet. " +
			"Type " + quitCommand + " to exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, logger, err := ctx.matcherClient()
			if err != nil {
				return err
			}

			opts := query.OptionsFromConfig(cfg)
			if trimmed := strings.ToLower(strings.TrimSpace(trigger)); trimmed != "" {
				if trimmed != config.TriggerAuto && trimmed != config.TriggerSubmit {
					return fmt.Errorf("--trigger must be %q or %q", config.TriggerAuto, config.TriggerSubmit)
				}
				opts.Mode = query.Mode(trimmed)
			}

			out := &syncWriter{w: cmd.OutOrStdout()}
			colorize := shouldColorize(cmd.OutOrStdout())
			reqCtx := ctx.requestContext(cmd)

			if cfg.Features.HealthCheck {
				health, healthErr := client.Health(reqCtx)
				out.println(renderHealth(health, healthErr, colorize))
			}

			opts.Logger = logger
			opts.OnChange = func(snap query.Snapshot) {
				if line := renderSnapshot(snap, details, colorize); line != "" {
					out.println(line)
				}
			}
			controller := query.New(reqCtx, client, opts)
			defer controller.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Search mode: %s (type %s to exit)\n", controller.Mode(), quitCommand)
			return runSearchLoop(cmd.InOrStdin(), controller, out)
		},
	}

	cmd.Flags().StringVar(&trigger, "trigger", "", "Override search.trigger (auto or submit)")
	cmd.Flags().BoolVar(&details, "details", false, "Show per-signal similarity scores")
	return cmd
}

func runSearchLoop(in io.Reader, controller *query.Controller, out *syncWriter) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := textutil.CleanName(scanner.Text())
		if line == quitCommand {
			break
		}
		if controller.Mode() == query.ModeAuto {
			controller.Input(line)
			continue
		}
		if err := controller.Submit(line); err != nil {
			if errors.Is(err, query.ErrBusy) {
				out.println(renderStatusLine("Search", statusWarn, err.Error(), false))
				continue
			}
			return err
		}
		controller.Wait()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// Flush a pending debounce so the last edit is answered before exit.
	if snap := controller.Snapshot(); snap.State == query.StateDebouncing {
		if err := controller.Submit(snap.Text); err != nil {
			return err
		}
	}
	controller.Wait()
	return nil
}

func renderSnapshot(snap query.Snapshot, details, colorize bool) string {
	switch snap.State {
	case query.StateResolved:
		if snap.Outcome == nil {
			return ""
		}
		return renderSingleOutcome(*snap.Outcome, details, colorize)
	case query.StateFailed:
		return renderStatusLine("Search", statusError, snap.Err, colorize)
	default:
		return ""
	}
}
