package svo

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config sets the behaviour of a Store. The zero value is usable and
// matches NewInMemory.
type Config struct {
	// Lookup decides whether Get sees compacted ancestors. Defaults to LookupExact.
	Lookup LookupPolicy

	// Regions decides what happens to a compacted region when one of its
	// cells is removed or overwritten. Defaults to RegionCoarse.
	Regions RegionPolicy

	// Logger receives debug output for drains, compaction and persistence.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Registerer, if set, has the store's collectors registered with it.
	// Each store needs its own registry, or a prometheus.WrapRegistererWith
	// wrapper, because collector names are fixed.
	Registerer prometheus.Registerer
}

func (c *Config) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Config) registerer() prometheus.Registerer {
	if c == nil {
		return nil
	}
	return c.Registerer
}
