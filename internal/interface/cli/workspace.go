package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/themis-iprm/themis/internal/adapter/presenter"
	"github.com/themis-iprm/themis/internal/app"
	"github.com/themis-iprm/themis/internal/app/config"
	"github.com/themis-iprm/themis/internal/application/flow"
	"github.com/themis-iprm/themis/internal/application/port/output"
	wizarduc "github.com/themis-iprm/themis/internal/application/usecase/wizard"
	"github.com/themis-iprm/themis/internal/application/wizardstore"
	infrafs "github.com/themis-iprm/themis/internal/infra/fs"
	"github.com/themis-iprm/themis/internal/infra/persistence/file"
	"github.com/themis-iprm/themis/internal/infrastructure/persistence/sqlite"
	"github.com/themis-iprm/themis/internal/validator/stepdata"
	"github.com/themis-iprm/themis/internal/workflow"
)

// workspace is the wiring of one command invocation
type workspace struct {
	paths   app.Paths
	repo    output.StateRepository
	store   *wizardstore.Store
	useCase *wizarduc.WizardUseCaseImpl
	closers []func() error
}

// openWorkspace wires storage, journal, catalog and use case from globalConfig
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg := globalConfig
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	ws := &workspace{paths: app.ResolvePaths(cfg.Home())}

	// Other themis processes on the same home wait until this command is done
	if _, onDisk := globalFs.(*afero.OsFs); onDisk {
		lock, err := infrafs.AcquireLock(ws.paths.Lock)
		if err != nil {
			return nil, err
		}
		ws.closers = append(ws.closers, lock.Release)
	}

	repo, closer, err := openRepository(ctx, cfg, globalFs, ws.paths)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.repo = repo
	if closer != nil {
		ws.closers = append(ws.closers, closer)
	}

	catalog, err := loadCatalog(cfg, globalFs, ws.paths)
	if err != nil {
		ws.Close()
		return nil, err
	}

	logger := app.GetLogger()
	opts := []wizardstore.Option{
		wizardstore.WithRecordName(cfg.StateName()),
		wizardstore.WithClock(nowFunc),
		wizardstore.WithLogger(logger),
	}
	if cfg.Journal() {
		opts = append(opts, wizardstore.WithEventSink(app.NewJournal(globalFs, ws.paths.Journal)))
	}
	ws.store = wizardstore.Open(ctx, repo, opts...)

	resolver := flow.NewResolver(catalog, flow.DefaultUIs())
	ws.useCase = wizarduc.NewWizardUseCaseImpl(ws.store, resolver, nowFunc)
	return ws, nil
}

// Close releases storage handles
func (ws *workspace) Close() error {
	var errs []error
	for i := len(ws.closers) - 1; i >= 0; i-- {
		if err := ws.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	ws.closers = nil
	return errors.Join(errs...)
}

func openRepository(ctx context.Context, cfg config.Config, fs afero.Fs, paths app.Paths) (output.StateRepository, func() error, error) {
	switch cfg.Storage() {
	case config.StorageSQLite:
		if err := fs.MkdirAll(paths.Var, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", paths.Var, err)
		}
		db, err := sqlite.Open(ctx, paths.DB)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewStateRepository(db), db.Close, nil
	default:
		return file.NewStateRepository(fs, paths.Var), nil, nil
	}
}

// catalogPath is flows_path, else <home>/etc/flows.yaml when present.
// Empty means the built-in flows.
func catalogPath(cfg config.Config, paths app.Paths) string {
	if path := cfg.FlowsPath(); path != "" {
		return path
	}
	if ok, _ := afero.Exists(globalFs, paths.Flows); ok {
		return paths.Flows
	}
	return ""
}

func loadCatalog(cfg config.Config, fs afero.Fs, paths app.Paths) (*workflow.Catalog, error) {
	path := catalogPath(cfg, paths)
	if path == "" {
		return workflow.DefaultCatalog(), nil
	}

	c, err := workflow.LoadCatalog(fs, path, stepdata.Default())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	app.GetLogger().Debug("flow catalog loaded from %s", path)
	return c, nil
}

// withWorkspace runs fn with an opened workspace and closes it afterwards
func withWorkspace(cmd *cobra.Command, fn func(ctx context.Context, ws *workspace) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ws, err := openWorkspace(ctx)
	if err != nil {
		return presenterFor(cmd).PresentError(err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			GetLogger().Warn("failed to close storage: %v", err)
		}
	}()
	return fn(ctx, ws)
}

// withRepository runs fn with only the state repository opened.
// Checks use it so a broken flow catalog does not hide the record.
func withRepository(cmd *cobra.Command, fn func(ctx context.Context, repo output.StateRepository, paths app.Paths) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	paths := app.ResolvePaths(globalConfig.Home())
	repo, closer, err := openRepository(ctx, globalConfig, globalFs, paths)
	if err != nil {
		return presenterFor(cmd).PresentError(err)
	}
	if closer != nil {
		defer func() {
			if err := closer(); err != nil {
				GetLogger().Warn("failed to close storage: %v", err)
			}
		}()
	}
	return fn(ctx, repo, paths)
}

func formatOf(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("format")
	return f
}

func presenterFor(cmd *cobra.Command) output.Presenter {
	return presenter.New(formatOf(cmd), cmd.OutOrStdout())
}

// present reports err, or message and data on success
func present(cmd *cobra.Command, message string, data interface{}, err error) error {
	p := presenterFor(cmd)
	if err != nil {
		return p.PresentError(err)
	}
	return p.PresentSuccess(message, data)
}
