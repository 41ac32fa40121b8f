package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/indexer"
)

var errNoIndexer = errors.New("video indexing is not configured, set INDEXER_ENDPOINT and INDEXER_KEY")

var (
	indexName         string
	indexNoWait       bool
	indexPollInterval time.Duration
)

var indexCmd = &cobra.Command{
	Use:   "index <video>",
	Short: "Upload a video for indexing and print its insights",
	Long: `Index uploads a video file to the indexing service, waits until
processing finishes, and prints the insight document verbatim to
stdout. With --no-wait the command returns right after the upload and
prints only the assigned video ID.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context(), args[0])
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexName, "name", "", "Display name (default: file name)")
	indexCmd.Flags().BoolVar(&indexNoWait, "no-wait", false, "Return after the upload without polling")
	indexCmd.Flags().DurationVar(&indexPollInterval, "poll-interval", 0, "Time between status polls (overrides the settings file)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context, path string) error {
	if app.indexer == nil {
		return errNoIndexer
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := indexName
	if name == "" {
		name = filepath.Base(path)
	}

	id, err := uploadVideo(ctx, name, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Uploaded %s as video %s\n", name, id)

	if indexNoWait {
		fmt.Println(id)
		return nil
	}

	insights, err := waitForIndex(ctx, id)
	if err != nil {
		return err
	}
	os.Stdout.Write(insights.Raw)
	fmt.Println()
	return nil
}

// uploadVideo streams the file to the indexing service, reporting byte
// progress on stderr.
func uploadVideo(ctx context.Context, name string, f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat video: %w", err)
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetDescription("Uploading "+name),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
	)
	defer bar.Finish()
	return app.indexer.Upload(ctx, name, io.TeeReader(f, bar))
}

// waitForIndex polls the indexing service until the video reaches a
// terminal state, spinning a progress indicator on stderr meanwhile.
func waitForIndex(ctx context.Context, videoID string) (*indexer.Insights, error) {
	interval := indexPollInterval
	if interval <= 0 {
		interval = app.cfg.Settings.Indexer.PollInterval()
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Indexing "+videoID),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	insights, err := app.indexer.WaitProcessed(ctx, videoID, interval)
	close(done)
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Indexing complete, state %s\n", coloredState(insights.State))
	return insights, nil
}

func coloredState(state string) string {
	switch state {
	case indexer.StateProcessed:
		return colorstring.Color("[green]" + state)
	case indexer.StateFailed:
		return colorstring.Color("[red]" + state)
	default:
		return colorstring.Color("[yellow]" + state)
	}
}
