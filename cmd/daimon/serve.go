package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"daimon/internal/server"
)

var servePort int

// serveCmd runs the chamber web surface.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Daimon Chamber web server",
	Long: `Serves the chamber single-page app and its duplex endpoint. Each
connection gets its own session over the shared canvas directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("\n  The chamber opens at http://localhost:%d\n\n", cfg.Server.Port)
		srv := server.New(cfg, newOrchestrator())
		err := srv.ListenAndServe(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (default 4455)")
}
