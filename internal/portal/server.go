package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wethinkt/go-pikeru/internal/config"
	"github.com/wethinkt/go-pikeru/internal/index"
	"github.com/wethinkt/go-pikeru/internal/tuilog"
)

// StatusSource reports indexer state.
type StatusSource interface {
	Status() index.Status
}

// CaptionIndex answers caption queries.
type CaptionIndex interface {
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, dirs []string) ([]index.Hit, error)
}

// Server is the optional HTTP status server of the portal.
type Server struct {
	addr      string
	status    StatusSource
	captions  CaptionIndex
	router    chi.Router
	startedAt time.Time
	quiet     bool
}

// NewServer returns a server that will listen on addr. Either source may
// be nil when the indexer is disabled.
func NewServer(addr string, status StatusSource, captions CaptionIndex, quiet bool) *Server {
	s := &Server{
		addr:      addr,
		status:    status,
		captions:  captions,
		startedAt: time.Now(),
		quiet:     quiet,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if !s.quiet {
		r.Use(middleware.Logger)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/search", s.handleSearch)
	})
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		if inst := portOwner(s.addr); inst != nil {
			return fmt.Errorf("listen: %s is held by pikeru %s (pid %d)", s.addr, inst.Type, inst.PID)
		}
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	tcp := ln.Addr().(*net.TCPAddr)
	inst := config.Instance{
		Type:      config.InstancePortal,
		PID:       os.Getpid(),
		Port:      tcp.Port,
		Host:      tcp.IP.String(),
		StartedAt: s.startedAt,
	}
	if err := config.RegisterInstance(inst); err != nil {
		tuilog.Log.Warn("Failed to register portal instance", "error", err)
	}

	go func() {
		<-ctx.Done()
		config.UnregisterInstance(os.Getpid())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	tuilog.Log.Info("Status server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// portOwner returns the registered pikeru instance serving on addr's port.
func portOwner(addr string) *config.Instance {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return nil
	}
	port, err := strconv.Atoi(p)
	if err != nil || port == 0 {
		return nil
	}
	return config.FindInstanceByPort(port)
}

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Uptime   string        `json:"uptime"`
	Indexer  *index.Status `json:"indexer,omitempty"`
	Captions int           `json:"captions"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httpRequestsTotal.WithLabelValues("status").Inc()
	resp := StatusResponse{Uptime: time.Since(s.startedAt).Truncate(time.Second).String()}
	if s.status != nil {
		st := s.status.Status()
		resp.Indexer = &st
	}
	if s.captions != nil {
		n, err := s.captions.Count(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "count_failed", err.Error())
			return
		}
		resp.Captions = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchResponse is the body of GET /api/v1/search.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []index.Hit `json:"hits"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	httpRequestsTotal.WithLabelValues("search").Inc()
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "q is required")
		return
	}
	if s.captions == nil {
		writeError(w, http.StatusServiceUnavailable, "no_index", "indexer is disabled")
		return
	}
	hits, err := s.captions.Search(r.Context(), q, r.URL.Query()["dir"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search_failed", err.Error())
		return
	}
	if hits == nil {
		hits = []index.Hit{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Hits: hits})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is an API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}
