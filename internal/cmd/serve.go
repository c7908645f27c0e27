package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ebrainte/rd-dav-server/internal/config"
	"github.com/ebrainte/rd-dav-server/internal/dav"
	"github.com/ebrainte/rd-dav-server/internal/debrid"
	"github.com/ebrainte/rd-dav-server/internal/log"
	"github.com/ebrainte/rd-dav-server/internal/provider"
	"github.com/ebrainte/rd-dav-server/internal/provider/omdb"
	"github.com/ebrainte/rd-dav-server/internal/provider/tmdb"
	"github.com/ebrainte/rd-dav-server/internal/provider/tvdb"
	"github.com/ebrainte/rd-dav-server/internal/provider/tvmaze"
	"github.com/ebrainte/rd-dav-server/internal/refresh"
	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the WebDAV server",
	Long: `Start the WebDAV server: build the virtual tree from the remote
torrent listing, refresh it on the configured interval, and serve it
over HTTP until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Init(log.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return err
	}

	client := debrid.NewClient(cfg.RemoteURL, cfg.Username, cfg.Password)
	resolver := provider.NewResolver(buildProviderChain(cfg)...)
	store := vfs.NewStore()
	scheduler := refresh.NewScheduler(client, vfs.NewBuilder(resolver), store, cfg.RefreshInterval())

	// Initial build. A failure here is not fatal: the server starts
	// with the empty layout and the scheduler retries on its interval.
	initCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	if err := scheduler.RunOnce(initCtx); err != nil {
		log.Error("initial refresh failed, serving empty tree until retry", "error", err)
	}
	cancel()

	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: dav.NewHandler(store, client),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("webdav server listening",
			"addr", cfg.Addr(),
			"movies", fmt.Sprintf("http://%s/%s/", cfg.Addr(), vfs.MoviesDir),
			"series", fmt.Sprintf("http://%s/%s/", cfg.Addr(), vfs.SeriesDir))
		errCh <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// buildProviderChain assembles the resolution chain in priority order.
// Providers without credentials are left out; TVMaze needs none and
// always anchors the chain.
func buildProviderChain(cfg *config.Config) []provider.Provider {
	var chain []provider.Provider

	if cfg.OMDbAPIKey != "" {
		chain = append(chain, omdb.New(cfg.OMDbAPIKey, nil))
	}
	if cfg.TMDBAPIKey != "" {
		chain = append(chain, tmdb.New(cfg.TMDBAPIKey))
	}
	if cfg.TVDBAPIKey != "" {
		if p, err := tvdb.New(cfg.TVDBAPIKey); err != nil {
			log.Warn("tvdb login failed, provider disabled", "error", err)
		} else {
			chain = append(chain, p)
		}
	}
	chain = append(chain, tvmaze.New(nil))

	log.Info("provider chain ready", "providers", len(chain))
	return chain
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
