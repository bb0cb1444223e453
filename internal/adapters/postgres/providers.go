package postgres

import (
	"github.com/google/wire"
	articleports "github.com/verdigris-dev/atrium/backend/internal/articles/ports"
	authzports "github.com/verdigris-dev/atrium/backend/internal/authz/ports"
	commentports "github.com/verdigris-dev/atrium/backend/internal/comments/ports"
	photoports "github.com/verdigris-dev/atrium/backend/internal/photos/ports"
	sectionports "github.com/verdigris-dev/atrium/backend/internal/sections/ports"
)

// ProviderSet is the wire provider set for postgres repositories
var ProviderSet = wire.NewSet(
	NewRoleRepository,
	wire.Bind(new(authzports.RoleRepository), new(*RoleRepository)),
	NewSectionRepository,
	wire.Bind(new(sectionports.SectionRepository), new(*SectionRepository)),
	NewArticleRepository,
	wire.Bind(new(articleports.ArticleRepository), new(*ArticleRepository)),
	NewCommentRepository,
	wire.Bind(new(commentports.CommentRepository), new(*CommentRepository)),
	NewPhotoRepository,
	wire.Bind(new(photoports.PhotoRepository), new(*PhotoRepository)),
	NewAlbumRepository,
	wire.Bind(new(photoports.AlbumRepository), new(*AlbumRepository)),
)
