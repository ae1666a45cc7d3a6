package di

import (
	"vaultgraph/application/ports"
	"vaultgraph/application/services"
	"vaultgraph/infrastructure/config"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Store          ports.GraphStore
	Views          ports.ViewStore
	Filesystem     ports.FilesystemReader
	Resolver       *services.ConnectionResolver
	GraphService   *services.GraphService
	ContextService *services.ContextService
}

// Close releases the container's long-lived resources.
func (c *Container) Close() error {
	return c.Store.Close()
}
