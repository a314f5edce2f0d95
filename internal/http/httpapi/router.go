package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"promptagent/internal/http/handlers"
	"promptagent/internal/infra"
	mw "promptagent/internal/middleware"
)

// MetricsSink is what the router needs from the metrics registry.
type MetricsSink interface {
	mw.HTTPObserver
	Handler() http.Handler
}

type Options struct {
	Logger          infra.Logger
	Metrics         MetricsSink
	AllowedOrigins  []string
	RateLimitPerMin int
	SessionTTL      time.Duration
	SecureCookies   bool
	DevRoutes       bool
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		mw.RequestID,
		mw.Logger(opts.Logger),
		chimw.Recoverer,
		mw.CORS(opts.AllowedOrigins),
	)
	if opts.Metrics != nil {
		r.Use(mw.Metrics(opts.Metrics))
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/readyz", app.Ready)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	// Provider callbacks carry no session cookie and are authenticated by signature.
	if app.WebhookSecret != "" {
		r.Post("/stripe/webhook", app.StripeWebhook)
	}

	r.Group(func(r chi.Router) {
		r.Use(
			mw.RateLimit(opts.RateLimitPerMin),
			mw.Session(opts.SessionTTL, opts.SecureCookies),
		)

		r.Post("/generate", app.Generate)
		r.Post("/regenerate", app.Regenerate)
		r.Post("/daily-post", app.DailyPost)
		r.Post("/generate-random-caption", app.RandomCaption)
		r.Post("/rewrite-caption", app.RewriteCaption)
		r.Post("/generate-weekly-plan", app.WeeklyPlan)
		r.Post("/draft-client-reply", app.ClientReply)
		r.Post("/smart-tweak-helper", app.TweakHelper)

		r.Get("/api/templates", app.ListTemplates)
		r.Get("/api/prompts", app.ListTemplates)
		r.Get("/api/user-status", app.UserStatus)
		r.Post("/subscribe", app.Subscribe)

		if opts.DevRoutes {
			for path, h := range map[string]http.HandlerFunc{
				"/reset-usage":  app.ResetUsage,
				"/dev-set-pro":  app.DevSetPro,
				"/dev-set-free": app.DevSetFree,
			} {
				r.Get(path, h)
				r.Post(path, h)
			}
		}
	})

	return r
}
