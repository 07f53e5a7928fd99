package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jamesinreallife/oram-public/internal/engine"
	"github.com/jamesinreallife/oram-public/internal/ratelimit"
)

const (
	defaultMaxInput = 1000
	maxBodyBytes    = 64 << 10
)

// BookingStats reports side-effect outcomes for the health endpoint.
type BookingStats interface {
	Emitted() int64
	Failures() int64
}

// Options configures a Server. Engine is required.
type Options struct {
	Engine     *engine.Engine
	Limiter    *ratelimit.Limiter // nil uses ratelimit defaults
	MaxInput   int                // in runes
	Restricted []string           // denylisted words
	MultiAgent bool               // answer with {"messages": [...]}
	Version    string
	Provider   string
	Lore       int // loaded fragment count, for health
	Bookings   BookingStats
	Logger     *zap.Logger
}

// Server is the ORAM HTTP API server.
type Server struct {
	engine     *engine.Engine
	limiter    *ratelimit.Limiter
	maxInput   int
	restricted *regexp.Regexp
	multiAgent bool
	version    string
	provider   string
	lore       int
	bookings   BookingStats
	log        *zap.Logger
	router     chi.Router
	started    time.Time
}

// New creates a new Server.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, fmt.Errorf("server: engine is required")
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(ratelimit.DefaultConfig())
	}
	if opts.MaxInput <= 0 {
		opts.MaxInput = defaultMaxInput
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	re, err := compileDenylist(opts.Restricted)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:     opts.Engine,
		limiter:    opts.Limiter,
		maxInput:   opts.MaxInput,
		restricted: re,
		multiAgent: opts.MultiAgent,
		version:    opts.Version,
		provider:   opts.Provider,
		lore:       opts.Lore,
		bookings:   opts.Bookings,
		log:        opts.Logger.Named("http"),
		started:    time.Now(),
	}
	s.routes()
	return s, nil
}

// compileDenylist matches any term at the start of a word, case-insensitive,
// so "administrator" is caught but "ecosystem" is not. Empty terms are dropped;
// an empty list never matches.
func compileDenylist(terms []string) (*regexp.Regexp, error) {
	var quoted []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile restricted terms: %w", err)
	}
	return re, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Limiter exposes the rate limiter so the owner can sweep it.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(middleware.RealIP)

	r.Post("/", s.handleCommand)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
	})

	s.router = r
}

// recoverer turns a panic into a fixed 500 body. It mirrors
// middleware.Recoverer but logs with zap and answers in JSON.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				s.log.Error("panic serving request",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "ok",
		"version":        s.version,
		"uptime":         time.Since(s.started).Seconds(),
		"provider":       s.provider,
		"offline":        s.engine.Offline(),
		"lore_fragments": s.lore,
	}
	if s.bookings != nil {
		body["bookings"] = s.bookings.Emitted()
		body["booking_failures"] = s.bookings.Failures()
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
