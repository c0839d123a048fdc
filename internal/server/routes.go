package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taprush/internal/config"
	"taprush/internal/db"
	"taprush/internal/loop"
	"taprush/internal/metrics"
	"taprush/internal/sessions"
	"time"
)

func Run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &Server{
		Sessions: sessions.NewStore(loop.DefaultOptions(), time.Duration(cfg.SessionTTL)*time.Minute),
		Metrics:  metrics.New(),
	}
	srv.Sessions.Metrics = srv.Metrics
	database, shutdown := OpenArchive(cfg.DatabaseURL, srv.Sessions)
	defer shutdown()
	srv.DB = database
	go srv.Sessions.RunSweeper(ctx)

	httpSrv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: srv.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	log.Println("[Server] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	return nil
}

// OpenArchive connects to the optional results database and attaches an
// archive to store. The database is nil when unset or unreachable; the game
// works without it. shutdown closes store, which flushes the archive, and
// only then the database.
func OpenArchive(dsn string, store *sessions.Store) (database *db.DB, shutdown func()) {
	shutdown = store.Close
	if dsn == "" {
		log.Println("[DB] DATABASE_URL not set, running without database")
		return nil, shutdown
	}
	database, err := db.Connect(dsn)
	if err != nil {
		log.Printf("[DB] Failed to connect: %v (running without database)\n", err)
		return nil, shutdown
	}
	if err := database.Migrate(); err != nil {
		log.Printf("[DB] Migration failed: %v\n", err)
	}
	store.Archive = sessions.NewArchive(database)
	log.Println("[DB] Database connected and migrations applied")
	return database, func() {
		store.Close()
		if err := database.Close(); err != nil {
			log.Printf("[DB] Close error: %v\n", err)
		}
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{code}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{code}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{code}/start", s.handleStart)
	mux.HandleFunc("POST /sessions/{code}/reset", s.handleReset)
	mux.HandleFunc("POST /sessions/{code}/tap/{id}", s.handleTap)
	mux.HandleFunc("GET /sessions/{code}/events", s.handleEvents)
	mux.HandleFunc("GET /sessions/{code}/ws", s.handleWebSocket)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /players/{id}", s.handlePlayer)
	mux.HandleFunc("GET /games/{id}", s.handleGame)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}
	return mux
}
