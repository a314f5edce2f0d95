package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"promptagent/internal/billing"
	"promptagent/internal/gateway"
	"promptagent/internal/http/handlers"
	httpapi "promptagent/internal/http/httpapi"
	"promptagent/internal/infra"
	"promptagent/internal/metrics"
	"promptagent/internal/modelselect"
	"promptagent/internal/prompts"
	"promptagent/internal/providers/textgen"
	"promptagent/internal/sessionstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	store, closeStore, err := sessionstore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("failed to open session store")
	}
	defer closeStore()

	registry, err := prompts.LoadRegistry(cfg.TemplatesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load templates")
	}

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.PromptProvider).Msg("failed to init text generator")
	}

	checkout, err := newCheckout(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init checkout")
	}

	m := metrics.New()
	pipeline, err := gateway.NewPipeline(gateway.Options{
		Store:     store,
		Composer:  prompts.NewComposer(registry),
		Generator: generator,
		Models:    modelselect.Models{Premium: cfg.ModelPremium, Standard: cfg.ModelStandard},
		FreeLimit: cfg.FreeLimit,
		Timeout:   cfg.GenerationTimeout,
		Logger:    &logger,
		Observer:  m,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	app := handlers.NewApp(pipeline, registry, checkout, logger)
	app.WebhookSecret = cfg.StripeWebhookSecret
	app.DeferGrant = cfg.BillingGrant == infra.GrantWebhook

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		Metrics:         m,
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		SessionTTL:      cfg.SessionTTL,
		SecureCookies:   !cfg.IsDevelopment(),
		DevRoutes:       cfg.EnableDevRoutes,
	})

	server := infra.NewHTTPServer(cfg, router)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("addr", server.Addr()).
		Str("store", cfg.SessionStore).
		Str("provider", generator.Name()).
		Str("grant", cfg.BillingGrant).
		Bool("dev_routes", cfg.EnableDevRoutes).
		Int("templates", registry.Len()).
		Msg("API listening")
	if err := server.Run(runCtx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
		return
	}
	logger.Info().Msg("server stopped")
}

func newGenerator(ctx context.Context, cfg *infra.Config) (textgen.Generator, error) {
	switch cfg.PromptProvider {
	case "openai":
		return textgen.NewOpenAIGenerator(textgen.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
	case "gemini":
		return textgen.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
	case "static":
		return textgen.NewStaticGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.PromptProvider)
	}
}

// newCheckout falls back to a static success URL when Stripe is not configured.
func newCheckout(cfg *infra.Config) (billing.Checkout, error) {
	if cfg.StripeSecretKey == "" {
		return billing.NewStaticCheckout(cfg.PublicBaseURL + "/billing/success"), nil
	}
	return billing.NewStripeCheckout(billing.StripeOptions{
		SecretKey:  cfg.StripeSecretKey,
		PriceID:    cfg.StripePriceID,
		SuccessURL: cfg.PublicBaseURL + "/billing/success",
		CancelURL:  cfg.PublicBaseURL + "/billing/cancel",
	})
}
