package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rohitkotecha14/sellscale-challenge/internal/metrics"
)

// NewRouter assembles the HTTP surface. All wallet and portfolio routes sit
// behind the session gate; stock routes are public pass-throughs.
func NewRouter(h *Handler, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer, Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Robinhood Clone"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMiddleware)
			r.Get("/me", h.Me)
			r.Delete("/delete", h.DeleteUser)
			r.Get("/wallet", h.GetWallet)
			r.Put("/wallet", h.UpdateWallet)
		})
	})

	r.Route("/portfolio", func(r chi.Router) {
		r.Use(h.SessionMiddleware)
		r.Get("/view", h.ViewPortfolio)
		r.Post("/buy", h.BuyStock)
		r.Post("/sell", h.SellStock)
	})

	r.Route("/stock", func(r chi.Router) {
		r.Get("/query/{ticker}", h.QueryStock)
		r.Get("/chart/{ticker}", h.ChartStock)
		r.Get("/search/{name}", h.SearchStock)
	})

	return r
}
