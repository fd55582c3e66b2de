package commands

import (
	"fmt"
	"log/slog"

	"github.com/colecta/colecta-cli/internal/auth"
	"github.com/colecta/colecta-cli/internal/config"
	"github.com/colecta/colecta-cli/internal/rest"
	"github.com/colecta/colecta-cli/internal/search"
	"github.com/colecta/colecta-cli/internal/store"
)

// Env bundles everything a command needs: config, session manager, the
// table client and the store wired on top of them.
type Env struct {
	Config *config.Config
	Auth   *auth.Manager
	Table  *rest.TableClient
	Store  *store.Store
	Search *search.Searcher
}

// newEnv builds the command environment. The store consults the session
// manager on every call, so commands that log in or out mid-run switch
// backends immediately.
func newEnv() (*Env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir, err = store.DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
	}

	manager := auth.NewManager()
	table := rest.NewTableClient(cfg.BackendURL, cfg.APIKey)
	if sess := manager.Current(); sess != nil {
		table.SetAuthToken(sess.AccessToken)
	}
	manager.OnChange(func(s *auth.Session) {
		if s != nil {
			table.SetAuthToken(s.AccessToken)
		} else {
			table.SetAuthToken(cfg.APIKey)
		}
	})

	st := store.New(manager.Current, table, store.NewLocalStore(dataDir))
	st.Subscribe(func(st *store.Store) {
		slog.Debug("store changed",
			"categories", len(st.Categories()),
			"items", len(st.Items()),
		)
	})

	return &Env{
		Config: cfg,
		Auth:   manager,
		Table:  table,
		Store:  st,
		Search: search.New(cfg.OMDBAPIKey),
	}, nil
}
