package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/declcat/internal/server"
	"github.com/mvp-joe/declcat/internal/service"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis over HTTP",
	Long: `Start an HTTP server answering POST /analyze.

Request body:  {"repoUrl": "https://github.com/owner/repo.git"}
Response body: {"files": [...]} or {"error": "..."}

Example:
  declcat serve --addr :3000
  curl -s -XPOST localhost:3000/analyze -d '{"repoUrl": "https://github.com/owner/repo.git"}'`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	// Clients are remote, so their locators must not read the host's disk
	cfg.Git.AllowLocal = cfg.Server.AllowLocal
	logger := newLogger(cfg.Logging, os.Stderr)

	svc, err := service.NewFromConfig(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "declcat %s listening on %s\n", Version, cfg.Server.Addr)

	router := server.NewRouter(svc, cfg.Server.RequestTimeout, logger)
	srv := server.New(cfg.Server.Addr, router, cfg.Server.ReadTimeout, logger)
	if err := srv.Run(ctx, cfg.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
