package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fitorfat/internal/config"
	"github.com/sells-group/fitorfat/internal/dashboard"
	"github.com/sells-group/fitorfat/internal/geo"
	"github.com/sells-group/fitorfat/internal/survey"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		tbl, err := preload(ctx)
		if err != nil {
			return err
		}

		svc := dashboard.NewService(tbl,
			dashboard.FileBoundaries(cfg.Data.BoundariesPath),
			dashboard.NewCache(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TTLMinutes)*time.Minute),
		)

		return startServer(ctx, buildMux(svc, cfg.Server), resolvePort(servePort, cfg.Server.Port))
	},
}

// preload reads the survey table and checks the boundary file in parallel.
// A bad survey file is fatal; unreadable boundaries only fail map requests.
func preload(ctx context.Context) (*survey.Table, error) {
	var tbl *survey.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, _, err := loadTable(gctx)
		if err != nil {
			return err
		}
		tbl = t
		return nil
	})
	g.Go(func() error {
		c, err := geo.Load(cfg.Data.BoundariesPath)
		if err != nil {
			zap.L().Warn("boundaries unreadable, map requests will fail",
				zap.String("path", cfg.Data.BoundariesPath),
				zap.Error(err),
			)
			return nil
		}
		zap.L().Info("boundaries checked",
			zap.String("path", cfg.Data.BoundariesPath),
			zap.Int("features", c.Len()),
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tbl, nil
}

// buildMux wires the dashboard router with the server settings.
func buildMux(svc *dashboard.Service, sc config.ServerConfig) http.Handler {
	return dashboard.NewRouter(svc, dashboard.RouterOptions{
		CORSOrigins:    sc.CORSOrigins,
		RateLimitRPS:   sc.RateLimitRPS,
		RateLimitBurst: sc.RateLimitBurst,
	})
}

// resolvePort prefers the --port flag over the configured port.
func resolvePort(flag, configured int) int {
	if flag != 0 {
		return flag
	}
	return configured
}

// startServer serves handler on port until ctx is cancelled, then shuts
// down gracefully.
func startServer(ctx context.Context, handler http.Handler, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return eris.Wrap(err, "server listen")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
