package rediscache

import (
	"github.com/google/wire"
	"github.com/verdigris-dev/atrium/backend/internal/platform/counters"
	sectionports "github.com/verdigris-dev/atrium/backend/internal/sections/ports"
)

// ProviderSet is the wire provider set for redis-backed adapters
var ProviderSet = wire.NewSet(
	NewManagerCache,
	wire.Bind(new(sectionports.ManagerCache), new(*ManagerCache)),
	NewCounterStore,
	wire.Bind(new(counters.Store), new(*CounterStore)),
)
