package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the authz application layer.
var ProviderSet = wire.NewSet(
	NewPermissionResolver,
	NewRoleService,
)
