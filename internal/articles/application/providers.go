package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the articles application layer.
var ProviderSet = wire.NewSet(
	NewArticlesService,
	NewCommentCounter,
)
