package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codelio/codelio/internal/app"
	"github.com/codelio/codelio/internal/catalog"
	"github.com/codelio/codelio/internal/config"
	"github.com/codelio/codelio/internal/docstore"
	"github.com/codelio/codelio/internal/identity"
	"github.com/codelio/codelio/internal/logging"
	"github.com/codelio/codelio/internal/solved"
	"github.com/codelio/codelio/internal/store"
	"github.com/codelio/codelio/internal/workspace"
)

// env is everything a command needs, built once per invocation.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *store.Store
	resolver *identity.Resolver
	ws       *workspace.Workspace
}

// loadConfig reads the configuration and applies the --catalog override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if src, _ := cmd.Flags().GetString("catalog"); src != "" {
		cfg.Catalog.Source = src
	}
	return cfg, nil
}

// bootstrap opens the store and wires the session stack.
func bootstrap(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", zap.String("path", dbPath))

	local := st.LocalStorage()
	provider := identity.NewTokenProvider(cfg.Auth.Secret, cfg.Auth.Issuer, local, logger.Named("auth"))
	resolver := identity.NewResolver(provider, local, logger.Named("session"))

	remote := docstore.Config{
		Table:    cfg.Remote.Table,
		Region:   cfg.Remote.Region,
		Endpoint: cfg.Remote.Endpoint,
	}
	ws := workspace.New(local, resolver, workspace.Options{
		Logger:       logger.Named("workspace"),
		WriteTimeout: cfg.Solved.WriteTimeout,
		Remote: func(ctx context.Context) (solved.Documents, error) {
			client, err := docstore.Connect(ctx, remote, logger.Named("docstore"))
			if err != nil {
				return nil, err
			}
			return client, nil
		},
	})

	return &env{cfg: cfg, logger: logger, store: st, resolver: resolver, ws: ws}, nil
}

// feed returns the configured catalog feed.
func (e *env) feed() catalog.Feed {
	return catalog.NewSourceFeed(e.cfg.Catalog.Source, e.cfg.Catalog.Timeout)
}

// Close flushes pending writes and releases the store.
func (e *env) Close() {
	e.ws.Close()
	e.resolver.Close()
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store failed", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{
		Workspace:   e.ws,
		Feed:        e.feed(),
		AuthEnabled: e.cfg.AuthEnabled(),
		Logger:      e.logger,
	})
}

// activeSession resumes the saved session. It fails when nobody is signed
// in.
func (e *env) activeSession(ctx context.Context) (identity.Session, error) {
	status, err := e.ws.Resume(ctx)
	if err != nil {
		return identity.Session{}, err
	}
	if status != identity.StatusActive {
		return identity.Session{}, fmt.Errorf("%w: run `codelio guest NAME` or `codelio login` first", workspace.ErrNoSession)
	}
	sess, _ := e.ws.Session()
	return sess, nil
}
