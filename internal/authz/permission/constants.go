package permission

// Name identifies a permission in the grant table. The set is closed:
// grants are keyed by Name and resolution iterates this registry, never
// arbitrary strings.
type Name string

const (
	// Articles
	ArticleGet    Name = "article:get"
	ArticleEdit   Name = "article:edit"
	ArticleDelete Name = "article:delete"
	ArticleCancel Name = "article:cancel"
	ArticleAudit  Name = "article:audit"

	// Comments
	CommentGet    Name = "comment:get"
	CommentEdit   Name = "comment:edit"
	CommentDelete Name = "comment:delete"
	CommentCancel Name = "comment:cancel"
	CommentAudit  Name = "comment:audit"

	// Photos
	PhotoGet    Name = "photo:get"
	PhotoEdit   Name = "photo:edit"
	PhotoDelete Name = "photo:delete"
	PhotoCancel Name = "photo:cancel"
	PhotoAudit  Name = "photo:audit"

	// Read level: the grant value carries the actor's numeric read level;
	// major level LEVEL_10 overrides read-level floors entirely.
	ReadLevel Name = "read:level"

	// Sections
	SectionCreate Name = "section:create"
	SectionEdit   Name = "section:edit"
	SectionDelete Name = "section:delete"

	// Role management (meta permission)
	RoleManage Name = "role:manage"
)

var registry = map[Name]string{
	ArticleGet:    "View articles; major LEVEL_10 sees any status, minor LEVEL_10 ignores privacy",
	ArticleEdit:   "Edit articles; minor LEVEL_10 bypasses re-review on content edits",
	ArticleDelete: "Hard-delete articles; major LEVEL_1 own, LEVEL_10 any",
	ArticleCancel: "Soft-cancel articles; same shape as delete",
	ArticleAudit:  "Review articles held for audit",
	CommentGet:    "View comments; major LEVEL_10 sees any status, minor LEVEL_10 ignores privacy",
	CommentEdit:   "Edit comments; minor LEVEL_10 bypasses re-review on content edits",
	CommentDelete: "Hard-delete comments; major LEVEL_1 own, LEVEL_10 any",
	CommentCancel: "Soft-cancel comments; same shape as delete",
	CommentAudit:  "Review comments held for audit",
	PhotoGet:      "View photos; major LEVEL_10 sees any status, minor LEVEL_10 ignores privacy",
	PhotoEdit:     "Edit photos; minor LEVEL_10 bypasses re-review on content edits",
	PhotoDelete:   "Hard-delete photos; major LEVEL_1 own, LEVEL_10 any",
	PhotoCancel:   "Soft-cancel photos; same shape as delete",
	PhotoAudit:    "Review photos held for audit",
	ReadLevel:     "Numeric read level (value) and read-level override (major LEVEL_10)",
	SectionCreate: "Create sections",
	SectionEdit:   "Edit any section regardless of delegated tier",
	SectionDelete: "Delete sections",
	RoleManage:    "Create, update and delete roles and their grants",
}

// IsValid reports whether name is part of the closed permission set.
func IsValid(name Name) bool {
	_, ok := registry[name]
	return ok
}

// Description returns the human-readable description for a permission name.
func Description(name Name) string {
	return registry[name]
}

// All returns every known permission name. The order is unspecified.
func All() []Name {
	names := make([]Name, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
