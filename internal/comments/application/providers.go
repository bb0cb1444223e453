package application

import (
	"github.com/google/wire"
	"github.com/verdigris-dev/atrium/backend/internal/comments/ports"
)

// ProviderSet is the wire provider set for the comments application layer.
var ProviderSet = wire.NewSet(
	NewCommentsService,
	NewArticleSourceAdapter,
	wire.Bind(new(ports.ArticleSource), new(*ArticleSourceAdapter)),
)
