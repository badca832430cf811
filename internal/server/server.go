package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	wishlogging "github.com/charmbracelet/wish/logging"

	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ui"
)

const shutdownTimeout = 30 * time.Second

// SessionFactory builds an independent TUI model for one SSH session.
// Every session gets its own tabs; only the backend and persisted history are shared.
type SessionFactory func(ctx context.Context, user string) (*ui.Model, error)

// Config holds the SSH server settings
type Config struct {
	AuthorizedKeysPath string
	Host               string
	HostKeyDir         string
	Port               string
}

// Server serves the sqldesk TUI over SSH
type Server struct {
	addr       string
	newSession SessionFactory
	wishServer *ssh.Server
}

// NewServer creates a new SSH server instance
func NewServer(cfg Config, newSession SessionFactory) (*Server, error) {
	if err := os.MkdirAll(cfg.HostKeyDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create SSH directory: %w", err)
	}

	s := &Server{
		addr:       net.JoinHostPort(cfg.Host, cfg.Port),
		newSession: newSession,
	}

	// Middleware executes in reverse order (last to first)
	wishServer, err := wish.NewServer(
		wish.WithAddress(s.addr),
		wish.WithHostKeyPath(filepath.Join(cfg.HostKeyDir, "id_ed25519")),
		wish.WithPublicKeyAuth(publicKeyHandler(cfg.AuthorizedKeysPath)),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			activeterm.Middleware(),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}

	s.wishServer = wishServer
	return s, nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Start serves until ctx is cancelled or the process is interrupted
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Logger.Info("Starting SSH server", "address", s.addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.wishServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("SSH server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down SSH server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.wishServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown SSH server: %w", err)
	}

	logging.Logger.Info("SSH server stopped")
	return nil
}
