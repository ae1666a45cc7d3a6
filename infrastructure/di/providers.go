package di

import (
	"vaultgraph/application/ports"
	"vaultgraph/application/services"
	"vaultgraph/infrastructure/config"
	"vaultgraph/infrastructure/fs"
	"vaultgraph/infrastructure/persistence/badger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideStore opens the embedded graph engine, bootstrapping archetypes on
// first open.
func ProvideStore(cfg *config.Config, logger *zap.Logger) (*badger.Store, error) {
	return badger.Open(badger.Config{
		Path:       cfg.DataDir,
		SyncWrites: cfg.SyncWrites,
	}, logger)
}

// ProvideGraphStore exposes the engine through its port.
func ProvideGraphStore(store *badger.Store) ports.GraphStore {
	return store
}

// ProvideViewStore creates the saved-layout store sharing the engine.
func ProvideViewStore(store *badger.Store) ports.ViewStore {
	return badger.NewViewStore(store)
}

// ProvideFilesystemReader creates the live-vault reader.
func ProvideFilesystemReader(cfg *config.Config, logger *zap.Logger) ports.FilesystemReader {
	return fs.NewReader(cfg.VaultDir, logger)
}

// ProvideConnectionResolver creates the bounded-radius resolver.
func ProvideConnectionResolver(store ports.GraphStore, logger *zap.Logger) *services.ConnectionResolver {
	return services.NewConnectionResolver(store, logger)
}

// ProvideGraphService creates the graph mutation service.
func ProvideGraphService(store ports.GraphStore, logger *zap.Logger) *services.GraphService {
	return services.NewGraphService(store, logger)
}

// ProvideContextService creates the reconciliation service.
func ProvideContextService(
	cfg *config.Config,
	store ports.GraphStore,
	views ports.ViewStore,
	fsys ports.FilesystemReader,
	resolver *services.ConnectionResolver,
	logger *zap.Logger,
) *services.ContextService {
	return services.NewContextService(store, views, fsys, resolver, cfg.VaultDir, logger)
}
