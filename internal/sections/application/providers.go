package application

import (
	"github.com/google/wire"
	"github.com/verdigris-dev/atrium/backend/internal/content/lifecycle"
)

// ProviderSet is the wire provider set for the sections application layer.
var ProviderSet = wire.NewSet(
	NewDelegationResolver,
	NewSectionsService,
	wire.Bind(new(lifecycle.DelegationSource), new(*DelegationResolver)),
)
