package ports

import (
	"context"

	"github.com/google/uuid"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// SectionSource resolves section references on content resources.
// Satisfied by the sections application service.
type SectionSource interface {
	GetSection(ctx context.Context, sectionID uuid.UUID) (*sections.Section, error)
}
