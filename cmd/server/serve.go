package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shrikavin.dev/internal/cache"
	"shrikavin.dev/internal/config"
	"shrikavin.dev/internal/handlers"
	"shrikavin.dev/internal/mailer"
	"shrikavin.dev/internal/ratelimit"
	"shrikavin.dev/internal/storage/sqlite"
)

const (
	shutdownTimeout     = 10 * time.Second
	maintenanceInterval = time.Hour
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start an HTTP server that renders the portfolio and accepts contact messages.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides SERVER_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()

	store, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	guard := cache.NewGuard(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
	if c, ok := guard.(io.Closer); ok {
		defer c.Close()
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		Limit:           cfg.ContactRateLimit,
		Window:          cfg.ContactRateWindow,
		CleanupInterval: 5 * time.Minute,
	})
	defer limiter.Stop()

	handler, err := handlers.SetupRoutes(cfg, handlers.Dependencies{
		Store:   store,
		Mailer:  mailer.New(cfg.SMTP(), logger),
		Guard:   guard,
		Limiter: limiter,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		maintain(gctx, store, guard, cfg.MessageRetention)
		return nil
	})

	return g.Wait()
}

// maintain periodically drops expired guard holds and old messages
func maintain(ctx context.Context, store *sqlite.Store, guard cache.Guard, retention time.Duration) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m, ok := guard.(*cache.Memory); ok {
				m.Sweep()
			}
			if retention <= 0 {
				continue
			}
			n, err := store.PurgeBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				log.Printf("Error purging messages: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d messages older than %s", n, retention)
			}
		}
	}
}
