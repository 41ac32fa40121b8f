package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/ocr"
	"github.com/textlens/textlens/internal/overlay"
	"github.com/textlens/textlens/internal/pipeline"
	"github.com/textlens/textlens/internal/sentiment"
)

var (
	analyzeOut    string
	analyzeJSON   bool
	analyzeLabels bool
	analyzeStroke string
	analyzeWidth  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Analyze one image file and save the annotated copy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "Annotated image path (default <input>.annotated.png)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the full analysis as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeLabels, "labels", false, "Draw the recognized text next to each outline")
	analyzeCmd.Flags().StringVar(&analyzeStroke, "stroke", "", "Outline color as a hex string like #FF0000")
	analyzeCmd.Flags().IntVar(&analyzeWidth, "width", 0, "Outline thickness in pixels")
	rootCmd.AddCommand(analyzeCmd)
}

// analysisReport is the --json output shape. It mirrors the server's
// analyze response except that the annotated image lands in a file
// instead of being inlined as base64.
type analysisReport struct {
	ID            string                 `json:"id"`
	ImageWidth    int                    `json:"image_width"`
	ImageHeight   int                    `json:"image_height"`
	Document      string                 `json:"document"`
	LinesDrawn    int                    `json:"lines_drawn"`
	LinesSkipped  int                    `json:"lines_skipped"`
	Recognition   *ocr.RecognitionResult `json:"recognition"`
	Sentiment     *sentiment.Record      `json:"sentiment,omitempty"`
	AnnotatedPath string                 `json:"annotated_path"`
}

func runAnalyze(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	pipe, err := newPipeline(nil)
	if err != nil {
		return err
	}
	renderer, err := styleRenderer(cmd)
	if err != nil {
		return err
	}
	if renderer != nil {
		pipe = pipe.WithRenderer(renderer)
	}

	analysis, err := pipe.Analyze(cmd.Context(), data)
	if err != nil {
		return err
	}

	out := analyzeOut
	if out == "" {
		out = annotatedPath(path)
	}
	if err := imaging.Save(analysis.Annotated.Image, out); err != nil {
		return fmt.Errorf("failed to save annotated image: %w", err)
	}

	if analyzeJSON {
		return printReport(analysis, out)
	}
	printSummary(analysis, out)
	return nil
}

// annotatedPath derives the default output path: photo.jpg becomes
// photo.annotated.png.
func annotatedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".annotated.png"
}

// styleRenderer builds a renderer from the style flags, or returns nil
// when none was set and the configured style applies.
func styleRenderer(cmd *cobra.Command) (*overlay.Renderer, error) {
	opts := app.cfg.Settings.Overlay
	changed := false

	if cmd.Flags().Changed("labels") {
		opts.DrawLabels = analyzeLabels
		changed = true
	}
	if analyzeStroke != "" {
		opts.StrokeColor = analyzeStroke
		changed = true
	}
	if analyzeWidth > 0 {
		opts.StrokeWidth = analyzeWidth
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return overlay.New(opts)
}

func printReport(a *pipeline.Analysis, out string) error {
	report := analysisReport{
		ID:            a.ID,
		ImageWidth:    a.ImageWidth,
		ImageHeight:   a.ImageHeight,
		Document:      a.Document,
		LinesDrawn:    a.Annotated.LinesDrawn,
		LinesSkipped:  a.Annotated.LinesSkipped,
		Recognition:   a.Recognition,
		Sentiment:     a.Sentiment,
		AnnotatedPath: out,
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printSummary(a *pipeline.Analysis, out string) {
	fmt.Printf("Recognized %d lines in a %dx%d image\n", a.Recognition.LineCount(), a.ImageWidth, a.ImageHeight)
	for _, l := range a.Recognition.Lines() {
		fmt.Printf("  %s\n", l.Text)
	}
	if a.Document == "" {
		fmt.Println("No text found; sentiment skipped.")
	}
	if a.Sentiment != nil {
		c := a.Sentiment.Confidence
		fmt.Printf("Sentiment: %s (positive %.2f, neutral %.2f, negative %.2f)\n",
			coloredLabel(a.Sentiment.Sentiment), c.Positive, c.Neutral, c.Negative)
	}
	fmt.Printf("Annotated image written to %s\n", out)
}

func coloredLabel(label sentiment.Label) string {
	switch label {
	case sentiment.Positive:
		return colorstring.Color("[green]" + string(label))
	case sentiment.Negative:
		return colorstring.Color("[red]" + string(label))
	case sentiment.Mixed:
		return colorstring.Color("[yellow]" + string(label))
	default:
		return colorstring.Color("[blue]" + string(label))
	}
}
