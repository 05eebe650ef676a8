// Package wire provides dependency injection for the automl application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/automl/internal/adapters/cli"
	"github.com/example/automl/internal/adapters/filesystem"
	"github.com/example/automl/internal/adapters/process"
	"github.com/example/automl/internal/adapters/sqlite"
	"github.com/example/automl/internal/adapters/table"
	"github.com/example/automl/internal/app"
	"github.com/example/automl/internal/logging"
	"github.com/example/automl/internal/ports/primary"
)

// Settings configure the shared logger.
type Settings struct {
	Verbose  bool
	LogPaths []string // stderr when empty
}

var (
	settings     Settings
	logger       *zap.Logger
	sweepService primary.SweepService
	once         sync.Once
)

// Configure sets the logger settings.
// It has no effect once a service has been requested.
func Configure(s Settings) {
	settings = s
}

// SweepService returns the singleton SweepService instance.
func SweepService() primary.SweepService {
	once.Do(initServices)
	return sweepService
}

// Sync flushes buffered log entries.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	logger, err = logging.New(settings.Verbose, settings.LogPaths...)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	// Secondary adapters
	store := filesystem.NewWorkspaceAdapter()
	metaRepo := table.NewMetaFeatureRepository()
	launcher := process.NewLauncher("")
	ledgers := sqlite.NewLedgerProvider()

	executor := app.NewEffectExecutor(store, logger)

	sweepService = app.NewSweepService(metaRepo, store, launcher, ledgers, executor, logger)
}

// SweepAdapter returns a new SweepAdapter writing to stdout, with the
// progress bar on stderr.
func SweepAdapter() *cliadapter.SweepAdapter {
	return SweepAdapterWithOutput(os.Stdout, os.Stderr)
}

// SweepAdapterWithOutput returns a new SweepAdapter writing to the given outputs.
// A nil progressOut disables the progress bar.
func SweepAdapterWithOutput(out, progressOut io.Writer) *cliadapter.SweepAdapter {
	once.Do(initServices)
	return cliadapter.NewSweepAdapter(sweepService, out, progressOut)
}
