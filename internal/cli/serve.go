package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/textlens/textlens/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with the browser frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides the settings file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	addr := app.cfg.Settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	hub := server.NewHub(app.log)
	pipe, err := newPipeline(hub)
	if err != nil {
		return err
	}

	if app.indexer == nil {
		app.log.Warning("no indexer credentials, video endpoints disabled")
	}

	srv, err := server.NewServer(server.Options{
		Addr:     addr,
		Pipeline: pipe,
		Overlay:  app.cfg.Settings.Overlay,
		Indexer:  app.indexer,
		Hub:      hub,
		Log:      app.log,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
