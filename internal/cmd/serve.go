package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/renato0307/sqldesk/internal/config"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/server"
	"github.com/renato0307/sqldesk/internal/ui"
)

// ServeCmd serves the TUI over SSH
type ServeCmd struct {
	AuthorizedKeys  string `help:"authorized_keys file checked for every login" default:"~/.ssh/authorized_keys" env:"SQLDESK_AUTHORIZED_KEYS"`
	ErrorClearDelay int    `help:"Seconds before error messages auto-clear" default:"10"`
	Host            string `help:"Address to listen on" default:"localhost" env:"SQLDESK_SSH_HOST"`
	Port            string `help:"Port to listen on" default:"23234" env:"SQLDESK_SSH_PORT"`
}

// Run executes the serve command
func (s *ServeCmd) Run(cli *CLI) error {
	if s.ErrorClearDelay == config.DefaultErrorClearDelay && cli.settings.ErrorClearDelay != nil {
		s.ErrorClearDelay = *cli.settings.ErrorClearDelay
	}

	if err := cli.Container.CheckConnection(context.Background()); err != nil {
		return err
	}

	opts := SessionOptions{ErrorClearDelay: time.Duration(s.ErrorClearDelay) * time.Second}
	newSession := func(ctx context.Context, user string) (*ui.Model, error) {
		logging.Logger.Debug("Creating session model", "user", user)
		return cli.Container.NewModel(ctx, opts)
	}

	srv, err := server.NewServer(server.Config{
		AuthorizedKeysPath: config.ExpandPath(s.AuthorizedKeys),
		Host:               s.Host,
		HostKeyDir:         config.GetSSHDir(),
		Port:               s.Port,
	}, newSession)
	if err != nil {
		return err
	}

	fmt.Printf("SSH server listening on %s (connection: %s)\n", srv.Addr(), cli.Container.Connection.Name)
	return srv.Start(context.Background())
}
