package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dicomscrub/internal/audit"
	"dicomscrub/internal/dicomanon"
	"dicomscrub/internal/logging"
	"dicomscrub/internal/pipeline"
	"dicomscrub/internal/preflight"
	"dicomscrub/internal/registry"
	"dicomscrub/internal/resolver"
)

func newAnonymizeCommand(ctx *commandContext) *cobra.Command {
	var modalitiesFlag string
	var granularityFlag string
	var deltaDaysFlag bool
	var resolverFlag string
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "anonymize <csv_in> <csv_out> <source_dir> <dest_dir>",
		Short: "Produce a de-identified spreadsheet and imaging copies",
		Long: `Reads the screening variables spreadsheet at csv_in, writes the
de-identified spreadsheet to csv_out, and routes cleaned copies of each
subject's DICOM files under dest_dir. Quarantined files land in a
quarantine subdirectory of dest_dir.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if modalitiesFlag != "" {
				cfg.Modalities = splitModalities(modalitiesFlag)
			}
			if granularityFlag != "" {
				cfg.Sheet.Granularity = granularityFlag
			}
			if cmd.Flags().Changed("delta-days") {
				cfg.Sheet.DiagnosisAsDeltaDays = deltaDaysFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			csvIn, csvOut, sourceDir, destDir := args[0], args[1], args[2], args[3]

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			engine := dicomanon.NewCLI(
				dicomanon.WithBinary(cfg.Engine.Binary),
				dicomanon.WithProfile(cfg.Engine.Profile),
				dicomanon.WithTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second),
			)

			out := cmd.OutOrStdout()
			if !skipPreflight {
				results, err := preflight.Run(engine, sourceDir, destDir)
				fmt.Fprintln(out, renderPreflight(results))
				if err != nil {
					return err
				}
			}

			pathResolver, err := buildResolver(resolverFlag, sourceDir)
			if err != nil {
				return err
			}

			store, err := audit.Open(cfg.Paths.AuditDB)
			if err != nil {
				return err
			}
			defer store.Close()

			adapter := dicomanon.NewAdapter(engine, cfg.Modalities, logger)
			pipe := pipeline.New(pipeline.Options{
				Config:   cfg,
				Resolver: pathResolver,
				Adapter:  adapter,
				Audit:    store,
				Logger:   logger,
			})

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, runErr := pipe.Run(runCtx, csvIn, csvOut, destDir)
			fmt.Fprintln(out, renderSummary(summary))
			if runErr != nil {
				return runErr
			}
			fmt.Fprintf(out, "Identity link recorded in %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&modalitiesFlag, "modalities", "", "Comma-separated modalities to accept (overrides config)")
	cmd.Flags().StringVar(&granularityFlag, "granularity", "", "Date granularity: month, year, or none (overrides config)")
	cmd.Flags().BoolVar(&deltaDaysFlag, "delta-days", false, "Write the diagnosis date as days since screening")
	cmd.Flags().StringVar(&resolverFlag, "resolver", "layout", "Imaging path resolver: layout or none")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip preflight checks")
	return cmd
}

func splitModalities(value string) []string {
	parts := strings.Split(value, ",")
	modalities := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			modalities = append(modalities, trimmed)
		}
	}
	return modalities
}

// buildResolver maps the --resolver flag to a PathResolver. "none" disables
// imaging resolution entirely: the run cleans the spreadsheet only.
func buildResolver(name, sourceDir string) (resolver.PathResolver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "layout", "":
		return resolver.NewLayoutResolver(sourceDir), nil
	case "none":
		return resolver.Func(func(registry.SubjectKey) ([]string, error) {
			return nil, nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown resolver %q (expected layout or none)", name)
	}
}
