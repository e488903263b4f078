package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestTimeout bounds each request, external searches included.
const RequestTimeout = 30 * time.Second

// Handler builds the chi router. API routes live under /api; /healthz sits at the root.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Use(r,
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(s.logger),
		middleware.Recoverer,
		middleware.Timeout(RequestTimeout),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Route("/tracks", func(r chi.Router) {
			r.Get("/", s.handleListTracks)
			r.Post("/", s.handleCreateTrack)
			r.Get("/trending", s.handleTrendingTracks)
			r.Get("/search", s.handleSearchTracks)
			r.Get("/{id}", s.handleGetTrack)
			r.Patch("/{id}", s.handleUpdateTrack)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.handleListPlaylists)
			r.Post("/", s.handleCreatePlaylist)
			r.Get("/{id}", s.handleGetPlaylist)
			r.Patch("/{id}", s.handleUpdatePlaylist)
			r.Delete("/{id}", s.handleDeletePlaylist)
		})

		r.Get("/ai/interactions", s.handleListInteractions)
		r.Get("/ai/interactions/{id}", s.handleGetInteraction)
		r.Post("/ai/chat", s.handleChat)

		r.Get("/external/search", s.handleExternalSearch)

		r.Get("/user/preferences", s.handleGetPreferences)
		r.Patch("/user/preferences", s.handleUpdatePreferences)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Message: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Message: "Method not allowed"})
	})
	return r
}

// Use adds middleware to r in order; the first one added runs outermost.
func (s *Server) Use(r chi.Router, middlewares ...Middleware) {
	for _, m := range middlewares {
		r.Use(m)
	}
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
