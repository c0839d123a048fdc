package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"taprush/internal/analytics"
	"taprush/internal/db"
	"taprush/internal/game"
	"taprush/internal/metrics"
	"taprush/internal/sessions"
)

const leaderboardSize = 10

type Server struct {
	Sessions *sessions.Store
	DB       *db.DB // nil if no database configured
	Metrics  *metrics.Metrics
}

type sessionResponse struct {
	Code    string                `json:"code"`
	ID      string                `json:"id"`
	Player  string                `json:"player"`
	State   game.State            `json:"state"`
	Summary analytics.GameSummary `json:"summary"`
	Badges  []analytics.Badge     `json:"badges,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Encode error: %v\n", err)
	}
}

// getSession resolves the session named in the path and marks it as in use.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) *sessions.Session {
	sess, err := s.Sessions.Get(r.PathValue("code"))
	if errors.Is(err, sessions.ErrNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		log.Println(err)
		http.Error(w, "Error loading session", http.StatusInternalServerError)
		return nil
	}
	sess.Touch()
	return sess
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	log.Println("[Handle:CreateSession] Request Received")

	sess, err := s.Sessions.Create(r.FormValue("name"))
	if err != nil {
		log.Println(err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session_code",
		Value:    sess.Code,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, map[string]string{
		"code":     sess.Code,
		"id":       sess.ID,
		"playerId": sess.PlayerID,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Code:    sess.Code,
		ID:      sess.ID,
		Player:  sess.PlayerName,
		State:   sess.Runner.Snapshot(),
		Summary: sess.Stats.Summary(),
		Badges:  sess.Badges(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	s.Sessions.Delete(sess.Code)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	accepted(w, sess.Runner.Start())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	accepted(w, sess.Runner.Reset())
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}

	targetID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid target ID", http.StatusBadRequest)
		return
	}
	at, err := pointerFromForm(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Stale ids are dropped by the game; the response only says the tap was queued.
	accepted(w, sess.Runner.Tap(targetID, at))
}

// pointerFromForm reads the optional x and y form values. Both must be given
// for a position to be used.
func pointerFromForm(r *http.Request) (*game.Point, error) {
	xs, ys := r.FormValue("x"), r.FormValue("y")
	if xs == "" || ys == "" {
		return nil, nil
	}
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid x: %w", err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid y: %w", err)
	}
	return &game.Point{X: x, Y: y}, nil
}

func accepted(w http.ResponseWriter, ok bool) {
	if !ok {
		http.Error(w, "Session closed", http.StatusGone)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stateChan := sess.Broadcaster.Subscribe()
	defer sess.Broadcaster.Unsubscribe(stateChan)

	writeState := func(st game.State) bool {
		data, err := json.Marshal(st)
		if err != nil {
			log.Printf("[SSE] Marshal error: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
		flusher.Flush()
		return true
	}

	if !writeState(sess.Runner.Snapshot()) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-sess.Closed():
			return
		case st, ok := <-stateChan:
			if !ok {
				return
			}
			sess.Touch()
			if !writeState(st) {
				return
			}
		}
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Leaderboard requires a database connection", http.StatusServiceUnavailable)
		return
	}

	category := r.URL.Query().Get("cat")
	if category == "" {
		category = analytics.CategoryScore
	}
	switch category {
	case analytics.CategoryScore, analytics.CategoryLevel, analytics.CategoryCombo:
	default:
		http.Error(w, "Unknown leaderboard category", http.StatusBadRequest)
		return
	}

	entries, err := analytics.NewQueries(s.DB).GetLeaderboard(category, leaderboardSize)
	if err != nil {
		log.Printf("[Analytics] leaderboard error: %v\n", err)
		http.Error(w, "Error loading leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Player stats require a database connection", http.StatusServiceUnavailable)
		return
	}

	playerID := r.PathValue("id")
	stats, err := analytics.NewQueries(s.DB).GetPlayerLifetimeStats(playerID)
	if err != nil {
		log.Printf("[Analytics] player error: %v\n", err)
		http.Error(w, "Player not found", http.StatusNotFound)
		return
	}
	records, err := s.DB.GetPlayerBadges(playerID)
	if err != nil {
		log.Printf("[Analytics] badges error: %v\n", err)
	}
	var badges []analytics.Badge
	for _, rec := range records {
		if b, ok := analytics.AllBadges[analytics.BadgeID(rec.BadgeID)]; ok {
			badges = append(badges, b)
		}
	}
	stats.Badges = badges
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "Game recaps require a database connection", http.StatusServiceUnavailable)
		return
	}

	recap, err := analytics.NewQueries(s.DB).GetGameRecap(r.PathValue("id"))
	if err != nil {
		log.Printf("[Analytics] game error: %v\n", err)
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s","sessions":%d}`, status, s.Sessions.Len())
}
