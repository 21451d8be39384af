package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/predictz/external/footballdata"
	"github.com/riskibarqy/predictz/external/twilio"
	"github.com/riskibarqy/predictz/internal/config"
	"github.com/riskibarqy/predictz/internal/domain/fixture"
	"github.com/riskibarqy/predictz/internal/domain/prediction"
	"github.com/riskibarqy/predictz/internal/observability"
	idgen "github.com/riskibarqy/predictz/internal/platform/id"
	"github.com/riskibarqy/predictz/internal/platform/logging"
	"github.com/riskibarqy/predictz/internal/platform/resilience"
	"github.com/riskibarqy/predictz/internal/usecase"
	"go.uber.org/zap/zapcore"
)

// App holds the services shared by the web, chat and terminal binaries.
type App struct {
	Config      config.Config
	Logger      *logging.Logger
	Fixtures    *usecase.FixtureService
	Coordinator *usecase.FetchCoordinator
	Analysis    *usecase.AnalysisService
	Chat        *usecase.ChatService
	Digest      *usecase.DigestService
	Reports     *usecase.ReportService

	closers []func(context.Context) error
}

// New builds telemetry and every service. Callers must Close the App.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	if err := a.initTelemetry(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	cache, closeCache, err := openDailyCache(ctx, cfg, a.Logger)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, fmt.Errorf("open fixture cache: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return closeCache() })

	catalog := fixture.DefaultCatalog()
	provider := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:    cfg.FootballDataBaseURL,
		APIKey:     cfg.FootballDataAPIKey,
		Timeout:    cfg.FootballDataTimeout,
		MaxRetries: cfg.FootballDataMaxRetries,
		Logger:     a.Logger.Named("footballdata"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CircuitBreakerEnabled,
			FailureThreshold: cfg.CircuitBreakerFailureCount,
			OpenTimeout:      cfg.CircuitBreakerOpenTimeout,
			HalfOpenMaxReq:   cfg.CircuitBreakerHalfOpenMaxReq,
		},
	})
	fetcher := usecase.NewFixtureFetcher(provider, catalog, usecase.FetchConfig{
		BulkRateLimitCooldown:        cfg.FetchBulkRateLimitCooldown,
		CompetitionRateLimitCooldown: cfg.FetchCompetitionRateLimitCooldown,
		InterRequestDelay:            cfg.FetchInterRequestDelay,
	}, a.Logger)
	parser := fixture.NewParser(catalog, cfg.Location, idgen.NewUUIDGenerator("local-"))

	a.Fixtures = usecase.NewFixtureService(fetcher, cache, parser, usecase.FixtureServiceConfig{
		Codes:    cfg.FootballDataCompetitions,
		Location: cfg.Location,
	}, a.Logger)
	a.Analysis = usecase.NewAnalysisService(prediction.NewRandomSource(cfg.PredictionSeed))
	a.Chat = usecase.NewChatService(a.Fixtures, a.Analysis, cfg.BotFixtureCacheTTL, a.Logger)
	a.Reports = usecase.NewReportService(cfg.ExportDir, a.Logger)

	var sender usecase.MessageSender
	if cfg.TwilioConfigured() {
		sender = twilio.NewClient(twilio.ClientConfig{
			BaseURL:    cfg.TwilioBaseURL,
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFrom,
			Logger:     a.Logger.Named("twilio"),
		})
	}
	a.Digest = usecase.NewDigestService(a.Chat, sender, cfg.DigestRecipients, a.Logger)

	a.Coordinator, err = usecase.NewFetchCoordinator(a.Fixtures, a.Logger)
	if err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	a.Logger.Info("app initialized",
		"env", cfg.AppEnv,
		"cache_backend", cfg.CacheBackend,
		"competitions", len(a.Fixtures.Codes()),
		"digest_enabled", a.Digest.Enabled(),
	)
	return a, nil
}

func (a *App) initTelemetry(ctx context.Context) error {
	cfg := a.Config

	var extra []zapcore.Core
	core, closeBetterStack, err := observability.NewBetterStackCore(cfg)
	if err != nil {
		return fmt.Errorf("init betterstack: %w", err)
	}
	if core != nil {
		extra = append(extra, core)
		a.closers = append(a.closers, closeBetterStack)
	}

	a.Logger = logging.NewJSON(cfg.LogLevel, extra...).With("service", cfg.ServiceName, "version", cfg.ServiceVersion)
	logging.SetDefault(a.Logger)

	shutdownTracing, err := observability.InitUptrace(cfg, a.Logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	stopProfiler, err := observability.InitPyroscope(cfg, a.Logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return stopProfiler() })

	a.Logger.DebugContext(ctx, "telemetry initialized",
		"uptrace", cfg.UptraceEnabled,
		"pyroscope", cfg.PyroscopeEnabled,
		"betterstack", cfg.BetterStackEnabled,
	)
	return nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}
