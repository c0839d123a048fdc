package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"taprush/internal/config"
	"taprush/internal/loop"
	"taprush/internal/metrics"
	"taprush/internal/server"
	"taprush/internal/sessions"
	"taprush/internal/sshplay"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
)

func main() {
	cfg := config.Load()
	log.Printf("SSH config: host=%s port=%s hostKeyPath=%s", cfg.SSHHost, cfg.SSHPort, cfg.SSHHostKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := sessions.NewStore(loop.DefaultOptions(), time.Duration(cfg.SessionTTL)*time.Minute)
	if cfg.MetricsPort != "" {
		store.Metrics = metrics.New()
		go serveMetrics(cfg.MetricsPort, store.Metrics)
	}
	_, shutdown := server.OpenArchive(cfg.DatabaseURL, store)
	defer shutdown()
	go store.RunSweeper(ctx)

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSHHost, cfg.SSHPort)),
		wish.WithMiddleware(
			sshplay.Middleware(store),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Taps are single keystrokes; don't let Nagle batch them.
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}
	if cfg.SSHHostKey != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSHHostKey))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	log.Printf("Starting SSH server on %s:%s", cfg.SSHHost, cfg.SSHPort)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func serveMetrics(port string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	log.Printf("Serving metrics on :%s/metrics", port)
	if err := http.ListenAndServe(net.JoinHostPort("", port), mux); err != nil {
		log.Printf("metrics server error: %v", err)
	}
}
