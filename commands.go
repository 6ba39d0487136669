package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"sitepalette/internal/palette"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var (
		format        string
		noCache       bool
		concurrency   int
		sampleSize    int
		minColorCount int
	)

	cmd := &cobra.Command{
		Use:   "extract <screenshot>...",
		Short: "extract a palette from one or more screenshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, err := validateOutputFormat(format)
			if err != nil {
				return err
			}

			options := cfg.Extract
			if cmd.Flags().Changed("sample-size") {
				options.SampleSize = sampleSize
			}
			if cmd.Flags().Changed("min-colors") {
				options.MinColorCount = minColorCount
			}
			if err := palette.ValidateExtractOptions(options); err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cfg.Concurrency
			}

			ctx := cmd.Context()
			svc, err := openServices(ctx, options)
			if err != nil {
				return err
			}
			defer svc.Close()

			if noCache {
				svc.themes.DisableCache()
			}

			startedAt := time.Now()
			reports := svc.themes.GenerateBatch(ctx, lo.Uniq(args), concurrency)
			failed := lo.CountBy(reports, func(report ThemeReport) bool { return report.Error != "" })

			log.WithFields(log.Fields{
				"screenshots": len(reports),
				"failed":      failed,
				"duration":    time.Since(startedAt).Round(time.Millisecond),
			}).Debug("batch finished")

			switch outputFormat {
			case outputFormatTable:
				renderReports(cmd.OutOrStdout(), reports)
			default:
				if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errExtractionsFailed, failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", outputFormatJSON, "output format; one of [json, table]")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the palette cache and always re-extract")
	cmd.Flags().IntVar(&concurrency, "concurrency", defaultBatchConcurrency, "screenshots processed in parallel")
	cmd.Flags().IntVar(&sampleSize, "sample-size", palette.DefaultExtractOptions().SampleSize, "side of the square sample grid in pixels")
	cmd.Flags().IntVar(&minColorCount, "min-colors", palette.DefaultExtractOptions().MinColorCount, "minimum palette size")

	return cmd
}

func newWatchCmd() *cobra.Command {
	var (
		existing bool
		archive  bool
		settle   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "extract palettes for screenshots as they appear in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := normalizePath(args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(dir); err != nil {
				return fmt.Errorf("watch dir: %w", err)
			} else if !info.IsDir() {
				return errors.New("watch target must be a directory")
			}

			ctx := cmd.Context()
			svc, err := openServices(ctx, cfg.Extract)
			if err != nil {
				return err
			}
			defer svc.Close()

			archiveDir := ""
			if archive {
				archiveDir = paths.ScreenshotDir
			}

			watchService := NewWatchService(svc.themes, cmd.OutOrStdout(), archiveDir)
			if cmd.Flags().Changed("settle") {
				watchService.SetSettleDelay(settle)
			}

			err = watchService.Run(ctx, dir, existing)
			status := watchService.GetStatus()
			log.WithFields(log.Fields{
				"processed": status.Processed,
				"failed":    status.Failed,
			}).Info("watch stopped")

			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&existing, "existing", false, "process screenshots already in the directory first")
	cmd.Flags().BoolVar(&archive, "archive", false, "copy screenshots into the data dir under their content hash")
	cmd.Flags().DurationVar(&settle, "settle", 750*time.Millisecond, "quiet period before a changed file is processed")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		format string
		limit  int
		hash   string
		prune  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "list cached extractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := validateOutputFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := openServices(ctx, cfg.Extract)
			if err != nil {
				return err
			}
			defer svc.Close()

			if cmd.Flags().Changed("prune") {
				if _, err := svc.history.Prune(ctx, prune); err != nil {
					return err
				}
			}

			extractions, err := svc.history.List(ctx, limit, hash)
			if err != nil {
				return err
			}
			overview, err := svc.stats.GetOverview(ctx, 0)
			if err != nil {
				return err
			}

			if outputFormat == outputFormatTable {
				renderHistory(cmd.OutOrStdout(), extractions, overview, time.Now())
				return nil
			}

			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"overview":    overview,
				"extractions": extractions,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", outputFormatTable, "output format; one of [json, table]")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of extractions to list")
	cmd.Flags().StringVar(&hash, "hash", "", "only list extractions of the screenshot with this SHA-256")
	cmd.Flags().IntVar(&prune, "prune", 0, "drop all but the newest N cached extractions before listing")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "remove cached extractions by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := openServices(ctx, cfg.Extract)
			if err != nil {
				return err
			}
			defer svc.Close()

			return svc.history.Delete(ctx, args)
		},
	}

	cmd.AddCommand(deleteCmd)
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "inspect or generate the config file",
	}

	var force bool
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target, err := NewSettingsService(configFile).Generate(force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
	generateCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rendered, err := NewSettingsService(configFile).Render(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.AddCommand(generateCmd, showCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appSlug, version)
		},
	}
}
