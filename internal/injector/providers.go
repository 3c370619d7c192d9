// Package injector wires the server binary.
package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/showroom/internal/config"
	"github.com/zeusync/showroom/internal/core/catalog"
	"github.com/zeusync/showroom/internal/core/observability/log"
	"github.com/zeusync/showroom/internal/server"
)

var ProviderSet = wire.NewSet(
	config.Load,
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideCatalog,
	server.New,
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideCatalog loads the configured catalog, or the built-in one.
func ProvideCatalog(cfg config.Config) (*catalog.Catalog, error) {
	return catalog.LoadFile(cfg.Catalog.Path)
}
