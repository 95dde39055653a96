package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/notefig/notefig/internal/batch"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/utils"
)

// batchCmd represents the batch command for parallel figure extraction.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Extract figures from multiple images in parallel",
	Long: `Process multiple note images in parallel, extracting chart and figure
crops from each. Directories are expanded to the supported image files they
contain; --recursive descends into subdirectories.

Supported formats: JPEG, PNG, BMP

Examples:
  notefig batch *.jpg
  notefig batch scans/ --recursive --workers 8
  notefig batch a.jpg b.png --output results.json`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// batchItemReport is the per-file entry in the batch report.
type batchItemReport struct {
	Path     string                    `json:"path"`
	Success  bool                      `json:"success"`
	Error    string                    `json:"error,omitempty"`
	Response *pipeline.ExtractResponse `json:"response,omitempty"`
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	pCfg := cfg.ToPipelineConfig()
	if cmd.Flags().Changed("output-dir") {
		pCfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}

	workers := cfg.Batch.Workers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	paths, err := collectImagePaths(args, recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported image files found")
	}

	source, err := buildRegionSource(cmd, cfg)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pCfg, source, cfg.Tables(), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	runner := batch.NewRunner(p, workers, slog.Default())
	results := runner.Run(cmd.Context(), paths)

	reports := make([]batchItemReport, 0, len(results))
	failures := 0
	for _, item := range results {
		report := batchItemReport{Path: item.Path, Success: item.Err == nil}
		if item.Err != nil {
			failures++
			report.Error = item.Err.Error()
		} else {
			env, err := item.Result.Envelope(false)
			if err != nil {
				return fmt.Errorf("building response for %s: %w", item.Path, err)
			}
			report.Response = &env
		}
		reports = append(reports, report)
	}

	encoded, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding batch report: %w", err)
	}
	if err := writeOutput(cmd, string(encoded)+"\n"); err != nil {
		return err
	}

	if failures == len(results) {
		return fmt.Errorf("all %d file(s) failed", failures)
	}
	if failures > 0 {
		slog.Warn("batch finished with failures", "failed", failures, "total", len(results))
	}
	return nil
}

// collectImagePaths expands files and directories into supported image paths.
func collectImagePaths(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			if utils.IsSupportedImage(arg) {
				paths = append(paths, arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if utils.IsSupportedImage(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("output-dir", "", "directory for extracted figure JPEGs")
	batchCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (0 uses all CPUs)")
	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	batchCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	batchCmd.Flags().String("regions-file", "", "replay a saved detection payload instead of calling the backend")
	batchCmd.Flags().String("vision-url", "", "vision backend base URL")
	batchCmd.Flags().String("vision-model", "", "vision backend model name")
	batchCmd.Flags().String("vision-key", "", "vision backend API key")
}
