// Package app is the application layer between the CLI and the query
// service. It constructs all dependencies from config, owns their
// lifecycle, and renders download progress when attached to a terminal.
package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/term"

	"goesfetch/internal/bucket"
	"goesfetch/internal/catalog"
	"goesfetch/internal/config"
	"goesfetch/internal/dataset"
	"goesfetch/internal/download"
	"goesfetch/internal/goes"
	"goesfetch/internal/inventory"
)

// App wires config into a ready-to-use query service.
type App struct {
	cfg     *config.Config
	store   goes.ObjectStore
	inv     goes.Inventory
	service *goes.Service
	logFile *os.File
	session string
}

// sessionID hands the service the session the App already drew, so the
// log column and the inventory session key line up.
type sessionID struct{ id string }

func (g sessionID) New() string { return g.id }

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, verbose bool) (*App, error) {
	session := goes.UUIDGenerator{}.New()

	logDir := cfg.LogDir
	if logDir == "" {
		var err error
		logDir, err = DefaultLogDir()
		if err != nil {
			return nil, err
		}
	}
	logger, logFile, err := newLogger(logDir, session, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	log := &slogAdapter{l: logger}

	store, err := bucket.NewStoreFromConfig(ctx, cfg.Store, log)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating object store: %w", err)
	}

	invCfg := cfg.Inventory
	if invCfg.Type != "off" && invCfg.DataDir == "" {
		invCfg.DataDir, err = DefaultDataDir()
		if err != nil {
			logFile.Close()
			return nil, err
		}
	}
	inv, err := inventory.NewInventoryFromConfig(invCfg)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating inventory: %w", err)
	}

	svc := goes.NewService(
		catalog.NewLister(store, log),
		download.NewMaterializer(store, log),
		store,
		dataset.Loader{},
		inv,
		log,
		goes.RealClock{},
		sessionID{id: session},
	)

	a := &App{
		cfg:     cfg,
		store:   store,
		inv:     inv,
		service: svc,
		logFile: logFile,
		session: session,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		svc.SetProgress(a.renderProgress)
	}
	return a, nil
}

// Service returns the wired query service.
func (a *App) Service() *goes.Service { return a.service }

// Config returns the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Session returns this invocation's session ID.
func (a *App) Session() string { return a.session }

// History returns the most recent inventory entries, newest first.
func (a *App) History(ctx context.Context, limit int) ([]goes.InventoryEntry, error) {
	return a.inv.List(ctx, limit)
}

// renderProgress redraws a one-line download counter on stderr. The
// escape clears the previous line, file names vary in length.
func (a *App) renderProgress(done, total int, res goes.DownloadResult) {
	fmt.Fprintf(os.Stderr, "\r\033[K[%d/%d] %s", done, total, res.Record.FileName())
	if done == total {
		fmt.Fprintln(os.Stderr)
	}
}

// Close releases the inventory and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.inv.Close(); err != nil {
		firstErr = fmt.Errorf("closing inventory: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}
