package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/acheong08/neuromap/internal/canvas"
	"github.com/acheong08/neuromap/internal/detail"
	"github.com/acheong08/neuromap/internal/layout"
	"github.com/acheong08/neuromap/internal/metrics"
)

//go:embed static/index.html
var indexHTML []byte

// Services are the collaborators every connection shares
type Services struct {
	Generator Generator
	Details   detail.Fetcher
	Layout    layout.Config
	Style     canvas.Style
	Logger    *zap.Logger
	Metrics   *metrics.Collector
}

// Server owns the HTTP routes and the WebSocket endpoint
type Server struct {
	ctx      context.Context
	services *Services
	proxy    http.Handler
	origins  []string
	upgrader websocket.Upgrader
}

// New creates a server. Connections are closed when ctx is cancelled.
func New(ctx context.Context, services Services, proxy http.Handler, allowedOrigins []string) *Server {
	if services.Logger == nil {
		services.Logger = zap.NewNop()
	}
	if services.Metrics == nil {
		services.Metrics = metrics.New()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s := &Server{
		ctx:      ctx,
		services: &services,
		proxy:    proxy,
		origins:  allowedOrigins,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return s
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.services.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/", s.serveIndex)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	router.Get("/ws", s.serveWs)
	if s.proxy != nil {
		router.Handle("/api/gemini", s.proxy)
	}
	router.Handle("/metrics", s.services.Metrics.Handler())

	return router
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.services.Logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := newClient(s.ctx, conn, s.services)
	go client.run()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.origins, "*") {
		return true
	}
	return slices.Contains(s.origins, origin)
}

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
