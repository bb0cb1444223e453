package lifecycle

import (
	"github.com/verdigris-dev/atrium/backend/internal/authz/permission"
	sections "github.com/verdigris-dev/atrium/backend/internal/sections/domain"
)

// PolicyConfig holds the global content policy toggles. It is built once at
// configuration load and passed by reference into every machine; nothing in
// the core reads policy from a global.
type PolicyConfig struct {
	ArticleAudit  bool
	ArticleCancel bool
	CommentAudit  bool
	CommentCancel bool
	PhotoAudit    bool
	PhotoCancel   bool
}

// Kind binds one resource kind to its permission names, its section
// capabilities and its policy toggles. The machine and the visibility
// evaluator are both parameterized by a Kind.
type Kind struct {
	Name     string
	HasDraft bool

	GetPerm    permission.Name
	EditPerm   permission.Name
	DeletePerm permission.Name
	CancelPerm permission.Name
	AuditPerm  permission.Name

	AuditCap    sections.Capability
	CancelCap   sections.Capability
	DeleteCap   sections.Capability
	DraftCap    sections.Capability
	RecycledCap sections.Capability

	AuditFlag  func(PolicyConfig) bool
	CancelFlag func(PolicyConfig) bool
}

// ArticleKind configures the machine for articles, the only kind with a
// draft state.
var ArticleKind = Kind{
	Name:     "article",
	HasDraft: true,

	GetPerm:    permission.ArticleGet,
	EditPerm:   permission.ArticleEdit,
	DeletePerm: permission.ArticleDelete,
	CancelPerm: permission.ArticleCancel,
	AuditPerm:  permission.ArticleAudit,

	AuditCap:    sections.CapArticleAudit,
	CancelCap:   sections.CapArticleCancel,
	DeleteCap:   sections.CapArticleDelete,
	DraftCap:    sections.CapArticleDraft,
	RecycledCap: sections.CapArticleRecycled,

	AuditFlag:  func(p PolicyConfig) bool { return p.ArticleAudit },
	CancelFlag: func(p PolicyConfig) bool { return p.ArticleCancel },
}

// CommentKind configures the machine for comments.
var CommentKind = Kind{
	Name: "comment",

	GetPerm:    permission.CommentGet,
	EditPerm:   permission.CommentEdit,
	DeletePerm: permission.CommentDelete,
	CancelPerm: permission.CommentCancel,
	AuditPerm:  permission.CommentAudit,

	AuditCap:    sections.CapCommentAudit,
	CancelCap:   sections.CapCommentCancel,
	DeleteCap:   sections.CapCommentDelete,
	DraftCap:    sections.CapCommentRecycled, // comments have no draft; never consulted
	RecycledCap: sections.CapCommentRecycled,

	AuditFlag:  func(p PolicyConfig) bool { return p.CommentAudit },
	CancelFlag: func(p PolicyConfig) bool { return p.CommentCancel },
}

// PhotoKind configures the machine for photos.
var PhotoKind = Kind{
	Name: "photo",

	GetPerm:    permission.PhotoGet,
	EditPerm:   permission.PhotoEdit,
	DeletePerm: permission.PhotoDelete,
	CancelPerm: permission.PhotoCancel,
	AuditPerm:  permission.PhotoAudit,

	AuditCap:    sections.CapPhotoAudit,
	CancelCap:   sections.CapPhotoCancel,
	DeleteCap:   sections.CapPhotoDelete,
	DraftCap:    sections.CapPhotoRecycled, // photos have no draft; never consulted
	RecycledCap: sections.CapPhotoRecycled,

	AuditFlag:  func(p PolicyConfig) bool { return p.PhotoAudit },
	CancelFlag: func(p PolicyConfig) bool { return p.PhotoCancel },
}
