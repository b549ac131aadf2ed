package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/jobshop/pkg/application/services/inventory"
	"github.com/vsinha/jobshop/pkg/application/services/jobstatus"
	"github.com/vsinha/jobshop/pkg/application/services/jobsync"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/config"
	"github.com/vsinha/jobshop/pkg/infrastructure/events"
	"github.com/vsinha/jobshop/pkg/infrastructure/logging"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/gormstore"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/jobshop/pkg/interfaces/api"
	"github.com/vsinha/jobshop/pkg/interfaces/api/handlers"
	"go.uber.org/zap"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	ConfigFile string
	CatalogDir string
	Addr       string // overrides server.addr when set
	Help       bool
}

// ServeCommand runs the HTTP API until its context is cancelled
type ServeCommand struct {
	config ServeConfig
	out    io.Writer

	// ready receives the bound address once the listener is open
	ready chan string
}

// NewServeCommand creates a new serve command with the given configuration
func NewServeCommand(config ServeConfig) *ServeCommand {
	return &ServeCommand{config: config, out: os.Stdout}
}

// Execute runs the serve command
func (c *ServeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}
	if c.config.Addr != "" {
		cfg.Server.Addr = c.config.Addr
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	catalog := &csv.Catalog{Parts: map[string]*entities.Part{}}
	if c.config.CatalogDir != "" {
		catalog, err = csv.NewLoader().LoadCatalog(c.config.CatalogDir)
		if err != nil {
			return fmt.Errorf("error loading catalog: %w", err)
		}
		logger.Info("Catalog loaded",
			zap.String("dir", c.config.CatalogDir),
			zap.Int("parts", len(catalog.Parts)),
			zap.Int("inventory", len(catalog.Inventory)),
			zap.Int("jobs", len(catalog.Jobs)))
	}

	store, err := openStore(cfg.Store, catalog, logger)
	if err != nil {
		return err
	}

	deps, err := buildDependencies(cfg, store, catalog, logger)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{Handler: api.SetupRouter(deps)}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	logger.Info("Server starting", zap.String("addr", ln.Addr().String()), zap.String("store", cfg.Store.Driver))
	if c.ready != nil {
		c.ready <- ln.Addr().String()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("Server exited")
	return nil
}

// openStore creates the configured record store. Catalog inventory and jobs are seeded
// into the memory store only; a postgres store is expected to hold them already.
func openStore(cfg config.StoreConfig, catalog *csv.Catalog, logger *zap.Logger) (repositories.RecordStore, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := gormstore.Open(cfg.DSN, cfg.Verbose)
		if err != nil {
			return nil, err
		}
		if len(catalog.Inventory) > 0 || len(catalog.Jobs) > 0 {
			logger.Warn("Catalog inventory and jobs are not seeded into postgres")
		}
		return store, nil
	default:
		store := memory.NewRecordStore()
		seedStore(store, catalog)
		return store, nil
	}
}

func buildDependencies(
	cfg *config.Config,
	store repositories.RecordStore,
	catalog *csv.Catalog,
	logger *zap.Logger,
) (handlers.Dependencies, error) {
	epsilon, err := cfg.SyncEpsilon()
	if err != nil {
		return handlers.Dependencies{}, err
	}
	policy, err := cfg.StatusPolicy()
	if err != nil {
		return handlers.Dependencies{}, err
	}
	quoteDefaults, err := cfg.QuoteDefaults()
	if err != nil {
		return handlers.Dependencies{}, err
	}

	eventStore := events.NewInMemoryEventStore(logger)
	return handlers.Dependencies{
		Store:         store,
		Catalog:       catalog,
		Synchronizer:  jobsync.NewSynchronizer(store, jobsync.Config{Epsilon: epsilon, Policy: &policy}, logger, eventStore),
		Status:        jobstatus.NewService(store, policy, logger, eventStore),
		Inventory:     inventory.NewService(store, policy, logger),
		QuoteDefaults: quoteDefaults,
		Debounce:      cfg.Sync.Debounce,
		Logger:        logger,
	}, nil
}

func (c *ServeCommand) showHelp() {
	fmt.Fprintf(c.out, `jobshop serve - Run the HTTP API

USAGE:
    jobshop serve [options]

OPTIONS:
    -config <file>    Config file (default: ./configs/config.yaml)
    -catalog <dir>    Catalog directory with parts, inventory and jobs
    -addr <addr>      Listen address, overrides server.addr
    -help             Show this help message

ENVIRONMENT:
    JOBSHOP_SERVER_ADDR, JOBSHOP_STORE_DRIVER, JOBSHOP_STORE_DSN, JOBSHOP_LOG_LEVEL, ...
`)
}
