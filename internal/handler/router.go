package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

type RouterConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	AccessLog      bool
}

func NewRouter(tasks *TaskHandler, users *UserHandler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(RateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
		}

		r.Get("/session", users.Session)
		r.Post("/session", users.Login)
		r.Delete("/session", users.Logout)

		r.Get("/users", users.List)
		r.Post("/users", users.Register)

		r.Get("/board", tasks.Board)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.List)
			r.Post("/", tasks.Create)
			r.Get("/{id}", tasks.Get)
			r.Put("/{id}", tasks.Update)
			r.Delete("/{id}", tasks.Delete)
			r.Post("/{id}/move", tasks.Move)
			r.Post("/{id}/smart-assign", tasks.SmartAssign)
		})

		r.Get("/actions", tasks.Activity)

		r.Get("/conflicts", tasks.Conflicts)
		r.Get("/conflicts/current", tasks.CurrentConflict)
		r.Post("/conflicts/{taskId}/resolve", tasks.ResolveConflict)
	})

	return r
}
