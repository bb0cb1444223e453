package seeder

import "github.com/verdigris-dev/atrium/backend/internal/authz/permission"

// SeedGrant is one grant row installed for a seeded role.
type SeedGrant struct {
	Name    permission.Name
	Enabled bool
	Major   int
	Minor   int
	Value   *int64
}

// SeedRole is a role installed at first boot. Seeding is idempotent: an
// existing role of the same name keeps whatever grants an operator has
// since given it.
type SeedRole struct {
	Name        string
	Description string
	Rank        int
	IsDefault   bool
	Grants      []SeedGrant
}

func level10All() []SeedGrant {
	grants := make([]SeedGrant, 0, len(permission.All()))
	for _, name := range permission.All() {
		grants = append(grants, SeedGrant{Name: name, Enabled: true, Major: 1000, Minor: 1000})
	}
	return grants
}

func memberGrants() []SeedGrant {
	readLevel := int64(0)
	return []SeedGrant{
		{Name: permission.ArticleGet, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.ArticleEdit, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.ArticleDelete, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.ArticleCancel, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.CommentGet, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.CommentEdit, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.CommentDelete, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.CommentCancel, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.PhotoGet, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.PhotoEdit, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.PhotoDelete, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.PhotoCancel, Enabled: true, Major: 100, Minor: 100},
		{Name: permission.ReadLevel, Enabled: true, Major: 100, Minor: 100, Value: &readLevel},
	}
}

// DefaultRoles defines the baseline roles installed at first boot.
func DefaultRoles() []SeedRole {
	return []SeedRole{
		{
			Name:        "admin",
			Description: "Full platform access",
			Rank:        1000,
			IsDefault:   false,
			Grants:      level10All(),
		},
		{
			Name:        "member",
			Description: "Standard member with own-content rights",
			Rank:        100,
			IsDefault:   true,
			Grants:      memberGrants(),
		},
	}
}
