// Package api serves the HTTP surface: health, the game catalog, stored
// tournament history and the WebSocket endpoint.
package api

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/vovakirdan/minigame-arena/internal/multiplayer"
	"github.com/vovakirdan/minigame-arena/internal/registry"
	"github.com/vovakirdan/minigame-arena/internal/storage"
)

// StatsSource reports live coordinator counters.
type StatsSource interface {
	Stats() multiplayer.Stats
}

// History reads stored tournaments. *storage.Store implements it.
type History interface {
	RecentTournaments(limit int) ([]storage.Tournament, error)
	TournamentByID(matchID string) (*storage.Tournament, error)
}

const (
	defaultRecent = 20
	maxRecent     = 100
)

// Option configures a Server.
type Option func(*Server)

// WithHistory enables the tournament history endpoints.
func WithHistory(h History) Option {
	return func(s *Server) {
		s.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the clock used for uptime.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// Server handles HTTP requests.
type Server struct {
	stats     StatsSource
	catalog   *registry.Catalog
	ws        http.Handler
	history   History // Optional
	logger    *log.Logger
	clock     clockwork.Clock
	startTime time.Time
}

// NewServer creates a new API server. ws serves the /ws upgrade.
func NewServer(stats StatsSource, catalog *registry.Catalog, ws http.Handler, opts ...Option) *Server {
	s := &Server{
		stats:   stats,
		catalog: catalog,
		ws:      ws,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "api",
		})
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	s.startTime = s.clock.Now()
	return s
}

// Routes sets up the HTTP routes with middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", s.handleListGames)
		r.Get("/matches/recent", s.handleRecentMatches)
		r.Get("/matches/{matchID}", s.handleMatch)
	})

	if s.ws != nil {
		r.Handle("/ws", s.ws)
	}

	return r
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status           string   `json:"status"`
	Timestamp        string   `json:"timestamp"`
	Uptime           string   `json:"uptime"`
	UptimeSeconds    int64    `json:"uptimeSeconds"`
	ActiveGames      int      `json:"activeGames"`
	ActiveMatches    int      `json:"activeMatches"`
	QueueSize        int      `json:"queueSize"`
	ConnectedPlayers int      `json:"connectedPlayers"`
	MatchesCompleted int      `json:"matchesCompleted"`
	GamesPlayed      int      `json:"gamesPlayed"`
	GameTypes        []string `json:"gameTypes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.clock.Now()
	uptime := now.Sub(s.startTime).Truncate(time.Second)
	st := s.stats.Stats()

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "ok",
		Timestamp:        now.UTC().Format(time.RFC3339),
		Uptime:           uptime.String(),
		UptimeSeconds:    int64(uptime.Seconds()),
		ActiveGames:      st.ActiveGames,
		ActiveMatches:    st.ActiveMatches,
		QueueSize:        st.QueueSize,
		ConnectedPlayers: st.ConnectedPlayers,
		MatchesCompleted: st.MatchesCompleted,
		GamesPlayed:      st.GamesPlayed,
		GameTypes:        s.catalog.IDs(),
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) handleRecentMatches(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "match history is disabled")
		return
	}

	limit := defaultRecent
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRecent)
	}

	tournaments, err := s.history.RecentTournaments(limit)
	if err != nil {
		s.logger.Error("cannot load recent matches", "error", err, "request", middleware.GetReqID(r.Context()))
		s.writeError(w, http.StatusInternalServerError, "cannot load match history")
		return
	}
	if tournaments == nil {
		tournaments = []storage.Tournament{}
	}
	s.writeJSON(w, http.StatusOK, tournaments)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "match history is disabled")
		return
	}

	t, err := s.history.TournamentByID(chi.URLParam(r, "matchID"))
	if err != nil {
		s.logger.Error("cannot load match", "error", err, "request", middleware.GetReqID(r.Context()))
		s.writeError(w, http.StatusInternalServerError, "cannot load match")
		return
	}
	if t == nil {
		s.writeError(w, http.StatusNotFound, "match not found")
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with proper headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("cannot encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// requestLogger logs each request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.clock.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", s.clock.Since(start),
			"request", middleware.GetReqID(r.Context()),
		)
	})
}
