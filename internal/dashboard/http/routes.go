package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

const exportsPerMinute = 10

// MountRoutes registers the dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(exportsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Post("/view", h.handleSelectView)
	r.Post("/analytics/view", h.handleSelectSubView)
	r.Post("/ui/sidebar", h.handleToggleSidebar)
	r.Post("/ui/theme", h.handleToggleTheme)
	r.Post("/session/reset", h.handleReset)

	r.Route("/api", func(api chi.Router) {
		if len(h.allowedOrigins) > 0 {
			api.Use(cors.Handler(cors.Options{
				AllowedOrigins:   h.allowedOrigins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPut, http.MethodOptions},
				AllowedHeaders:   []string{"Content-Type", "X-CSRF-Token"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		api.Get("/state", h.handleGetState)
		api.Put("/state", h.handlePutState)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/students/export.csv", h.handleStudentsCSV)
		gr.Get("/analytics/{sub}/export.csv", h.handleAnalyticsCSV)
	})
}
