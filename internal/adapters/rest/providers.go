package rest

import "github.com/google/wire"

// ProviderSet provides the HTTP handlers.
var ProviderSet = wire.NewSet(
	NewBaseHandler,
	NewHealthHandler,
	NewRolesHandler,
	NewSectionsHandler,
	NewArticlesHandler,
	NewCommentsHandler,
	NewPhotosHandler,
)
