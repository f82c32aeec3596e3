package rpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/tolelom/tolfarm/metrics"
)

// Options configures a Server.
type Options struct {
	// AuthToken, when non-empty, must be presented as
	// "Authorization: Bearer <token>" on every RPC call.
	AuthToken   string
	CORSOrigins []string
	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int
	Log       *slog.Logger
}

// Server is a JSON-RPC 2.0 HTTP server. POST / serves RPC calls, GET
// /metrics serves Prometheus metrics and GET /health a liveness check.
type Server struct {
	handler *Handler
	addr    string
	opts    Options
	log     *slog.Logger
	srv     *http.Server
}

// NewServer creates a Server on addr.
func NewServer(addr string, handler *Handler, opts Options) *Server {
	s := &Server{handler: handler, addr: addr, opts: opts, log: opts.Log}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "height": s.handler.bc.Height()})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			burst := s.opts.RateBurst
			if burst <= 0 {
				burst = 1
			}
			r.Use(NewRateLimiter(rate.Limit(s.opts.RateLimit), burst).Middleware)
		}
		r.Use(s.auth)
		r.Post("/", s.serveRPC)
	})
	return r
}

// Serve binds addr, serves until ctx is done, then shuts down gracefully,
// waiting up to 5 seconds for in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("rpc listening", "addr", ln.Addr().String(), "auth", s.opts.AuthToken != "")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) auth(next http.Handler) http.Handler {
	if s.opts.AuthToken == "" {
		return next
	}
	want := []byte("Bearer " + s.opts.AuthToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
			metrics.RPCRequests.WithLabelValues("", "unauthorized").Inc()
			writeJSON(w, http.StatusUnauthorized, errResponse(nil, CodeUnauthorized, "unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1*1024*1024)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RPCRequests.WithLabelValues("", "parse_error").Inc()
		writeJSON(w, http.StatusOK, errResponse(nil, CodeParseError, err.Error()))
		return
	}
	if req.JSONRPC != "2.0" {
		metrics.RPCRequests.WithLabelValues(req.Method, "invalid").Inc()
		writeJSON(w, http.StatusOK, errResponse(req.ID, CodeInvalidRequest, "jsonrpc must be '2.0'"))
		return
	}

	resp := s.handler.Dispatch(req)
	status := "ok"
	if resp.Error != nil {
		status = "error"
		if resp.Error.Code == CodeMethodNotFound {
			req.Method = "unknown"
		}
	}
	metrics.RPCRequests.WithLabelValues(req.Method, status).Inc()
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
