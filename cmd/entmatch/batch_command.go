package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"entmatch/internal/batch"
	"entmatch/internal/ingest"
	"entmatch/internal/results"
	"entmatch/internal/services"
	"entmatch/internal/textutil"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var contentType string
	var export bool
	var exportPath string
	var jsonOutput bool
	var details bool

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Match every name in a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Features.BatchUpload {
				return services.Wrap(services.ErrDisabled, "batch", "upload", "batch upload is disabled by features.batch_upload", nil)
			}
			wantExport := export || strings.TrimSpace(exportPath) != ""
			if wantExport && !cfg.Features.Export {
				return services.Wrap(services.ErrDisabled, "batch", "export", "export is disabled by features.export", nil)
			}

			client, logger, err := ctx.matcherClient()
			if err != nil {
				return err
			}

			file, closer, err := ingest.Open(args[0], contentType)
			if err != nil {
				return err
			}
			defer closer.Close()

			session := batch.NewSession(ingest.New(ingest.OptionsFromConfig(cfg), logger), client, logger)
			report, err := session.Upload(ctx.requestContext(cmd), file)
			if err != nil {
				return err
			}

			var written string
			if wantExport {
				written = resolveExportPath(cfg.ExportPath, exportPath)
				if err := results.ExportFile(written, report.Outcomes); err != nil {
					return fmt.Errorf("export results: %w", err)
				}
			}

			if jsonOutput {
				payload := struct {
					batch.Report
					ExportPath string `json:"export_path,omitempty"`
				}{Report: report, ExportPath: written}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderBatchSummary(report, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderBatchTable(report.Outcomes, details, colorize))
			if written != "" {
				fmt.Fprintln(out, renderStatusLine("Exported", statusOK, written, colorize))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", "Declared MIME type (detected from the extension when empty)")
	cmd.Flags().BoolVar(&export, "export", false, "Write results to the configured export file")
	cmd.Flags().StringVar(&exportPath, "export-path", "", "Write results to this file instead of the configured one")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the report as JSON")
	cmd.Flags().BoolVar(&details, "details", false, "Show per-signal similarity scores")
	return cmd
}

// resolveExportPath sanitizes the file name component of an explicit path and
// falls back to the configured export location.
func resolveExportPath(configured func(string) string, explicit string) string {
	explicit = strings.TrimSpace(explicit)
	if explicit == "" {
		return configured("")
	}
	dir, name := filepath.Split(explicit)
	name = textutil.SanitizeFileName(name, ".csv", results.DefaultExportFilename)
	if dir == "" {
		return configured(name)
	}
	return filepath.Join(dir, name)
}
