package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skydeals/skydeals-api/internal/api"
	apimiddleware "github.com/skydeals/skydeals-api/internal/api/middleware"
	"github.com/skydeals/skydeals-api/internal/domain"
)

// setupRouter builds the route tree with all middleware and handlers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.Trace)
	r.Use(apimiddleware.Metrics)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.googleOAuth,
		app.mailer,
		app.dispatcher,
		app.cookies,
		app.config.Server,
	)
	userHandler := api.NewUserHandler(app.userStore, app.aircraftStore)
	aircraftHandler := api.NewAircraftHandler(app.aircraftStore, app.userStore, app.listingService)

	authMW := apimiddleware.NewAuthMiddleware(app.jwtService, app.userStore, app.errWriter)
	guard := apimiddleware.NewGuard(app.userStore, app.errWriter)

	wrap := app.errWriter.Wrap

	r.Route("/api/v1", func(r chi.Router) {
		if app.config.Server.RateLimitPerMinute > 0 {
			app.rateLimiter = apimiddleware.NewRateLimiter(app.config.Server.RateLimitPerMinute, app.errWriter)
			r.Use(app.rateLimiter.Limit)
		}

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", wrap(authHandler.Signup))
			r.Post("/login", wrap(authHandler.Login))
			r.Post("/logout", wrap(authHandler.Logout))
			r.Get("/verify", wrap(authHandler.Verify))
			r.Post("/forgot-password", wrap(authHandler.ForgotPassword))
			r.Patch("/reset-password/{token}", wrap(authHandler.ResetPassword))

			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)
				r.Get("/get-me", wrap(userHandler.GetMe))
				r.Patch("/updateMe", wrap(userHandler.UpdateMe))
				r.Patch("/update-password", wrap(authHandler.UpdatePassword))
				r.Get("/get-my-ads", wrap(userHandler.GetMyAds))

				r.With(guard.RequireRole(domain.RoleAdmin)).
					Get("/{id}", wrap(userHandler.GetByID))
			})
		})

		r.Route("/aircrafts", func(r chi.Router) {
			r.Get("/", wrap(aircraftHandler.Search))
			r.Get("/recent-ads", wrap(aircraftHandler.RecentAds))
			r.Get("/related-ads/{id}", wrap(aircraftHandler.RelatedAds))
			r.Get("/{id}", wrap(aircraftHandler.Get))

			r.Group(func(r chi.Router) {
				r.Use(authMW.Authenticate)

				r.With(guard.RequireRole(domain.RoleSeller)).
					Post("/", wrap(aircraftHandler.Create))
				r.With(guard.RequireListingOwner).
					Delete("/{id}", wrap(aircraftHandler.Delete))

				r.Group(func(r chi.Router) {
					r.Use(guard.RequireRole(domain.RoleAdmin))
					r.Get("/unapproved-ads", wrap(aircraftHandler.UnapprovedAds))
					r.Patch("/approve-listing/{id}", wrap(aircraftHandler.Approve))
					r.Patch("/reject-listing/{id}", wrap(aircraftHandler.Reject))
				})
			})
		})
	})

	r.Get("/auth/google", wrap(authHandler.GoogleLogin))
	r.Get("/auth/google/callback", wrap(authHandler.GoogleCallback))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("writing health response", "error", err)
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
