package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	adapterexecutor "github.com/renato0307/sqldesk/internal/adapters/executor"
	adapterstorage "github.com/renato0307/sqldesk/internal/adapters/storage"
	"github.com/renato0307/sqldesk/internal/config"
	"github.com/renato0307/sqldesk/internal/domain"
	"github.com/renato0307/sqldesk/internal/logging"
	"github.com/renato0307/sqldesk/internal/ports"
	"github.com/renato0307/sqldesk/internal/services"
	"github.com/renato0307/sqldesk/internal/state"
	"github.com/renato0307/sqldesk/internal/ui"
)

// maxFetchRows caps how many rows the SQL executor reads per query
const maxFetchRows = 10000

// connectTimeout bounds the reachability check before a session starts
const connectTimeout = 10 * time.Second

// pinger is implemented by executors backed by a real database
type pinger interface {
	Ping(ctx context.Context) error
}

// Container holds all dependencies shared by every session of the process
type Container struct {
	Connection    domain.Connection
	ExportService *services.ExportService

	closePolicy   domain.ClosePolicy
	executor      ports.ClosableQueryExecutor
	historyLimit  int
	historyRepo   ports.HistoryRepository // nil when persistence is disabled
	keys          config.KeyBindingsConfig
	overlapPolicy domain.OverlapPolicy
	previewRows   int
}

// Session is the per-user state: one store and the services bound to it
type Session struct {
	History *services.HistoryService
	Queries *services.QueryService
	Store   *state.Store
}

// SessionOptions configures the TUI of a session
type SessionOptions struct {
	DevMode         bool
	ErrorClearDelay time.Duration
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(settings *config.Settings, connectionName string) (*Container, error) {
	conn, err := settings.ResolveConnection(connectionName)
	if err != nil {
		return nil, err
	}

	// Validated in Settings.Validate, errors ignored
	overlap, _ := domain.ParseOverlapPolicy(settings.OverlapPolicy)
	closePolicy, _ := domain.ParseClosePolicy(settings.ClosePolicy)

	if settings.Keys != nil {
		if err := settings.Keys.Validate(ui.GetValidKeyNames()); err != nil {
			return nil, fmt.Errorf("invalid key bindings in settings.json: %w", err)
		}
	}

	exec, err := adapterexecutor.New(conn, maxFetchRows)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection '%s': %w", conn.Name, err)
	}

	c := &Container{
		Connection:    conn,
		ExportService: services.NewExportService(filepath.Join(config.GetHome(), "exports")),
		closePolicy:   closePolicy,
		executor:      exec,
		historyLimit:  config.DefaultHistoryLimit,
		keys:          settings.Keys,
		overlapPolicy: overlap,
	}
	if settings.HistoryLimit != nil {
		c.historyLimit = *settings.HistoryLimit
	}
	if settings.ResultPreviewRows != nil {
		c.previewRows = *settings.ResultPreviewRows
	}

	if settings.PersistHistory == nil || *settings.PersistHistory {
		repo, err := adapterstorage.NewSQLiteRepository(config.GetDBPath())
		if err != nil {
			_ = exec.Close()
			return nil, err
		}
		c.historyRepo = repo
	}

	logging.Logger.Info("Container initialized",
		"connection", conn.Name,
		"driver", conn.Driver,
		"database", conn.Database,
		"overlap_policy", overlap,
		"close_policy", closePolicy,
		"persist_history", c.historyRepo != nil)

	return c, nil
}

// CheckConnection verifies the active connection is reachable.
// Executors without a database behind them always pass.
func (c *Container) CheckConnection(ctx context.Context) error {
	p, ok := c.executor.(pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("connection '%s' is not reachable: %w", c.Connection.Name, err)
	}
	logging.Logger.Debug("Connection reachable", "connection", c.Connection.Name)
	return nil
}

// NewSession creates an independent store and its services.
// Persisted history is loaded into the store; a load failure is logged and ignored.
func (c *Container) NewSession(ctx context.Context) *Session {
	store := state.NewStore(state.WithHistoryLimit(c.historyLimit))

	var writer ports.HistoryWriter
	if c.historyRepo != nil {
		writer = c.historyRepo
	}

	queries := services.NewQueryService(store, c.executor, services.QueryServiceOptions{
		ClosePolicy:   c.closePolicy,
		Database:      c.Connection.Database,
		History:       writer,
		OverlapPolicy: c.overlapPolicy,
	})
	history := services.NewHistoryService(store, c.historyRepo)

	if _, err := history.Load(ctx); err != nil {
		logging.Logger.Warn("Failed to load persisted history", "error", err)
	}

	return &Session{
		History: history,
		Queries: queries,
		Store:   store,
	}
}

// NewModel creates a session and the TUI model bound to it
func (c *Container) NewModel(ctx context.Context, opts SessionOptions) (*ui.Model, error) {
	session := c.NewSession(ctx)

	return ui.NewModel(session.Queries, session.History, c.ExportService, ui.ModelOptions{
		Connection:      c.Connection.Name,
		Context:         ctx,
		DevMode:         opts.DevMode,
		ErrorClearDelay: opts.ErrorClearDelay,
		Keys:            c.keys,
		PreviewRows:     c.previewRows,
	}), nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var firstErr error
	if c.historyRepo != nil {
		if err := c.historyRepo.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.executor.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
