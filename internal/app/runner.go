package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/predictz/internal/interfaces/httpapi"
	"github.com/riskibarqy/predictz/internal/observability"
	"github.com/sourcegraph/conc/pool"
)

const shutdownTimeout = 10 * time.Second

// RunWeb serves the dashboard and drives the background fixture fetch until
// ctx is done or a component fails.
func (a *App) RunWeb(ctx context.Context) error {
	handler := httpapi.NewHandler(a.Coordinator, a.Analysis, a.Config.CORSAllowedOrigins, a.Logger)
	router := httpapi.NewRouter(handler, a.Logger, a.Config.CORSAllowedOrigins)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(a.Coordinator.Run)
	p.Go(func(ctx context.Context) error {
		select {
		case <-a.Coordinator.Ready():
			a.Coordinator.Start()
		case <-ctx.Done():
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		return a.serveHTTP(ctx, "web", a.Config.HTTPAddr, router)
	})
	p.Go(func(ctx context.Context) error {
		return observability.RunPprof(ctx, a.Config, a.Logger)
	})
	return p.Wait()
}

// RunWhatsApp serves the Twilio webhook and the daily digest schedule.
func (a *App) RunWhatsApp(ctx context.Context) error {
	router := httpapi.NewWhatsAppRouter(httpapi.NewWebhook(a.Chat, a.Logger), a.Logger)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		return a.serveHTTP(ctx, "whatsapp", a.Config.WhatsAppHTTPAddr, router)
	})
	p.Go(func(ctx context.Context) error {
		return runDigestScheduler(ctx, a.Config.DigestCron, a.Config.Location, a.Digest, a.Logger)
	})
	p.Go(func(ctx context.Context) error {
		return observability.RunPprof(ctx, a.Config, a.Logger)
	})
	return p.Wait()
}

func (a *App) serveHTTP(ctx context.Context, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       a.Config.ReadTimeout,
		WriteTimeout:      a.Config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server starting", "server", name, "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown %s server: %w", name, err)
	}
	a.Logger.Info("http server stopped", "server", name)
	return nil
}
