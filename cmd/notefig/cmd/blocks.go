package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/region"
)

// blocksCmd represents the blocks command.
var blocksCmd = &cobra.Command{
	Use:   "blocks [textfile]",
	Short: "Synthesize content blocks from note text",
	Long: `Turn raw note text into structured content blocks: paragraphs, chart
callouts with emoji substitution, and per-region chart annotations.

Text is read from the given file, or from stdin when no file is given.
Region annotations come from a saved detection payload via --regions-file.

Examples:
  notefig blocks notes.txt
  notefig blocks notes.txt --regions-file charts.json
  cat notes.txt | notefig blocks`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runBlocksCommand,
}

func runBlocksCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0]) //nolint:gosec // G304: user-provided path
		if err != nil {
			return fmt.Errorf("reading text file: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	var regions []region.DetectedRegion
	regionsFile, _ := cmd.Flags().GetString("regions-file")
	if regionsFile != "" {
		regions, err = region.LoadChartFile(regionsFile)
		if err != nil {
			return fmt.Errorf("loading regions file: %w", err)
		}
	}

	synth := blocks.NewSynthesizer(cfg.Tables())
	out := synth.Synthesize(string(data), regions)

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding blocks: %w", err)
	}
	return writeOutput(cmd, string(encoded)+"\n")
}

func init() {
	rootCmd.AddCommand(blocksCmd)

	blocksCmd.Flags().String("regions-file", "", "saved detection payload providing chart annotations")
	blocksCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
