package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter wires every route behind the shared middleware chain. The lookup
// argument resolves client IPs to country codes for locale detection and may
// be nil.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.I18N(app.Config.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
	})

	// Public gallery. Reads are anonymous; ratings and comments need a user.
	r.Route("/v1/gallery", func(r chi.Router) {
		r.Get("/", app.GalleryList)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(app.Config.JWTSecret))
			r.Post("/{story_id}/rating", app.GalleryRate)
			r.Post("/{story_id}/comments", app.GalleryComment)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Get("/v1/me", app.Me)

		r.Route("/v1/stories", func(r chi.Router) {
			r.Post("/", app.StoriesCreate)
			r.Get("/", app.StoriesList)
			r.Get("/{story_id}", app.StoryGet)
		})

		r.Route("/v1/payments", func(r chi.Router) {
			r.Post("/", app.PaymentsCreate)
			r.Get("/", app.PaymentsList)
		})

		r.Get("/v1/stats/summary", app.StatsSummary)

		r.Route("/v1/admin", func(r chi.Router) {
			r.Get("/payments", app.AdminPaymentsList)
			r.Post("/users/{user_id}/premium", app.AdminGrantPremium)
			r.Delete("/users/{user_id}/premium", app.AdminRevokePremium)
		})
	})

	return r
}
