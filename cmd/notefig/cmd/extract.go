package cmd

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/notefig/notefig/internal/config"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/region"
	"github.com/notefig/notefig/internal/utils"
	"github.com/notefig/notefig/internal/vision"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract chart and figure crops from note images",
	Long: `Detect chart, graph and diagram regions in one or more note images and
persist each region as a standalone JPEG figure named {base}_figure_{i}.jpg.

Region detection uses a vision-language backend when an API key is
configured. Alternatively a previously saved detection payload can be
replayed with --regions-file. Without either, no figures are extracted.

Supported formats: JPEG, PNG, BMP

Examples:
  notefig extract notes.jpg
  notefig extract scan.png --output-dir figures --padding 8
  notefig extract notes.jpg --regions-file charts.json --text-file notes.txt
  notefig extract *.jpg --format text`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runExtractCommand,
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	pCfg := cfg.ToPipelineConfig()
	if cmd.Flags().Changed("output-dir") {
		pCfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	}
	if cmd.Flags().Changed("padding") {
		pCfg.PaddingPercent, _ = cmd.Flags().GetFloat64("padding")
	}
	if cmd.Flags().Changed("jpeg-quality") {
		pCfg.JPEGQuality, _ = cmd.Flags().GetInt("jpeg-quality")
	}
	if cmd.Flags().Changed("max-pixels") {
		pCfg.MaxPixels, _ = cmd.Flags().GetInt64("max-pixels")
	}

	format, _ := cmd.Flags().GetString("format")
	if format != outputFormatJSON && format != outputFormatText {
		return fmt.Errorf("invalid format: %s (must be json or text)", format)
	}

	source, err := buildRegionSource(cmd, cfg)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pCfg, source, cfg.Tables(), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	includeData, _ := cmd.Flags().GetBool("include-data")
	textFile, _ := cmd.Flags().GetString("text-file")
	overlayDir, _ := cmd.Flags().GetString("overlay-dir")

	rawText := ""
	if textFile != "" {
		data, err := os.ReadFile(textFile) //nolint:gosec // G304: user-provided path
		if err != nil {
			return fmt.Errorf("reading text file: %w", err)
		}
		rawText = string(data)
	}

	envelopes := make([]pipeline.ExtractResponse, 0, len(args))
	var out strings.Builder
	for _, path := range args {
		if !utils.IsSupportedImage(path) {
			return fmt.Errorf("unsupported image format: %s", path)
		}

		img, _, err := utils.LoadImage(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}

		res, err := p.ProcessImage(cmd.Context(), img, filepath.Base(path), rawText)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}

		if overlayDir != "" {
			if err := saveOverlay(overlayDir, res, img, pCfg.PaddingPercent); err != nil {
				return err
			}
		}

		if format == outputFormatText {
			writeTextResult(&out, path, res)
			continue
		}

		env, err := res.Envelope(includeData)
		if err != nil {
			return fmt.Errorf("building response for %s: %w", path, err)
		}
		envelopes = append(envelopes, env)
	}

	if format == outputFormatJSON {
		var payload any = envelopes
		if len(envelopes) == 1 {
			payload = envelopes[0]
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding results: %w", err)
		}
		out.Write(data)
		out.WriteString("\n")
	}

	return writeOutput(cmd, out.String())
}

// buildRegionSource picks the detection backend: a replayed payload file, the
// configured vision backend, or none.
func buildRegionSource(cmd *cobra.Command, cfg *config.Config) (region.RegionSource, error) {
	regionsFile, _ := cmd.Flags().GetString("regions-file")
	if regionsFile != "" {
		regions, err := region.LoadChartFile(regionsFile)
		if err != nil {
			return nil, fmt.Errorf("loading regions file: %w", err)
		}
		return region.Static(regions), nil
	}

	vCfg := cfg.Vision
	if cmd.Flags().Changed("vision-url") {
		vCfg.BaseURL, _ = cmd.Flags().GetString("vision-url")
	}
	if cmd.Flags().Changed("vision-model") {
		vCfg.Model, _ = cmd.Flags().GetString("vision-model")
	}
	if cmd.Flags().Changed("vision-key") {
		vCfg.APIKey, _ = cmd.Flags().GetString("vision-key")
	}
	if vCfg.APIKey == "" {
		slog.Warn("no vision API key configured, figure detection disabled")
		return nil, nil
	}

	client, err := vision.NewClient(vCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing vision backend: %w", err)
	}
	return region.NewDescriptiveSource(client), nil
}

// saveOverlay renders detected region rectangles onto a copy of the input
// image and writes it as {base}_overlay.png.
func saveOverlay(overlayDir string, res *pipeline.Result, img image.Image, paddingPct float64) error {
	if err := os.MkdirAll(overlayDir, 0o750); err != nil {
		return fmt.Errorf("creating overlay directory: %w", err)
	}
	overlay := pipeline.RenderOverlay(img, res.Regions, color.RGBA{R: 255, A: 255}, paddingPct)
	path := filepath.Join(overlayDir, res.BaseName+"_overlay.png")
	if err := imaging.Save(overlay, path); err != nil {
		return fmt.Errorf("saving overlay %s: %w", path, err)
	}
	return nil
}

func writeTextResult(out *strings.Builder, path string, res *pipeline.Result) {
	fmt.Fprintf(out, "%s (%dx%d): %d region(s), %d figure(s)\n",
		path, res.Width, res.Height, len(res.Regions), len(res.Artifacts))
	for _, a := range res.Artifacts {
		fmt.Fprintf(out, "  %s (%dx%d)\n", a.Path, a.Width, a.Height)
	}
	for _, b := range res.Blocks {
		fmt.Fprintf(out, "  [%s] %s\n", b.Kind, b.Text)
	}
}

// writeOutput writes result text to --output or stdout.
func writeOutput(cmd *cobra.Command, content string) error {
	outputFile, _ := cmd.Flags().GetString("output")
	if outputFile == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}
	if err := os.WriteFile(outputFile, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("output-dir", "", "directory for extracted figure JPEGs")
	extractCmd.Flags().Float64("padding", 0, "padding applied around detected regions, in percent")
	extractCmd.Flags().Int("jpeg-quality", 0, "JPEG quality for persisted figures (1-100)")
	extractCmd.Flags().Int64("max-pixels", 0, "maximum input image pixel count (0 disables the check)")
	extractCmd.Flags().String("regions-file", "", "replay a saved detection payload instead of calling the backend")
	extractCmd.Flags().String("text-file", "", "text file fed into content block synthesis")
	extractCmd.Flags().String("overlay-dir", "", "write detection overlay PNGs to this directory")
	extractCmd.Flags().StringP("format", "f", outputFormatJSON, "output format (json, text)")
	extractCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	extractCmd.Flags().Bool("include-data", false, "inline persisted JPEGs as base64 data URIs in JSON output")
	extractCmd.Flags().String("vision-url", "", "vision backend base URL")
	extractCmd.Flags().String("vision-model", "", "vision backend model name")
	extractCmd.Flags().String("vision-key", "", "vision backend API key")
}
