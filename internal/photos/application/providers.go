package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the photos application layer.
var ProviderSet = wire.NewSet(
	NewPhotosService,
	NewAlbumCounter,
)
