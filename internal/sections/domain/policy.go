package domain

// Tier is the minimum delegated role a section capability requires. The
// tiers are not a totally ordered hierarchy: OWNER and MODERATOR are
// siblings, and only MANAGER accepts any of the three identity roles.
type Tier int

const (
	TierOwner     Tier = 0
	TierModerator Tier = 1
	TierManager   Tier = 2
)

// Capability names one delegable section power. The policy map assigns each
// capability its required tier.
type Capability string

const (
	CapSetName        Capability = "set_name"
	CapSetDescription Capability = "set_description"
	CapSetReadLevel   Capability = "set_read_level"
	CapSetStatus      Capability = "set_status"
	CapSetPrivacy     Capability = "set_privacy"
	CapSetModerator   Capability = "set_moderator"
	CapSetAssistant   Capability = "set_assistant"
	CapSetPolicy      Capability = "set_policy"
	CapMemberKick     Capability = "member_kick"
	CapSectionMute    Capability = "section_mute"

	CapArticleAudit    Capability = "article_audit"
	CapArticleCancel   Capability = "article_cancel"
	CapArticleDelete   Capability = "article_delete"
	CapArticleDraft    Capability = "article_draft"
	CapArticleRecycled Capability = "article_recycled"
	CapArticleEdit     Capability = "article_edit"

	CapCommentAudit    Capability = "comment_audit"
	CapCommentCancel   Capability = "comment_cancel"
	CapCommentDelete   Capability = "comment_delete"
	CapCommentRecycled Capability = "comment_recycled"

	CapPhotoAudit    Capability = "photo_audit"
	CapPhotoCancel   Capability = "photo_cancel"
	CapPhotoDelete   Capability = "photo_delete"
	CapPhotoRecycled Capability = "photo_recycled"

	CapAlbumManage Capability = "album_manage"
)

// Policy is a section's capability→tier map plus its scalar policy fields.
type Policy struct {
	Capabilities map[Capability]Tier

	AutoAudit         bool
	ArticleMute       bool
	ReplyMute         bool
	MaxArticles       int
	MaxArticlesOneDay int
}

// DefaultPolicy returns the policy installed when a section is created:
// structural changes stay with the owner, moderation opens to managers.
func DefaultPolicy() Policy {
	return Policy{
		Capabilities: map[Capability]Tier{
			CapSetName:        TierOwner,
			CapSetDescription: TierOwner,
			CapSetReadLevel:   TierOwner,
			CapSetStatus:      TierOwner,
			CapSetPrivacy:     TierOwner,
			CapSetModerator:   TierOwner,
			CapSetAssistant:   TierModerator,
			CapSetPolicy:      TierOwner,
			CapMemberKick:     TierModerator,
			CapSectionMute:    TierModerator,

			CapArticleAudit:    TierManager,
			CapArticleCancel:   TierModerator,
			CapArticleDelete:   TierModerator,
			CapArticleDraft:    TierManager,
			CapArticleRecycled: TierManager,
			CapArticleEdit:     TierModerator,

			CapCommentAudit:    TierManager,
			CapCommentCancel:   TierModerator,
			CapCommentDelete:   TierModerator,
			CapCommentRecycled: TierManager,

			CapPhotoAudit:    TierManager,
			CapPhotoCancel:   TierModerator,
			CapPhotoDelete:   TierModerator,
			CapPhotoRecycled: TierManager,

			CapAlbumManage: TierManager,
		},
		AutoAudit:         false,
		ArticleMute:       false,
		ReplyMute:         false,
		MaxArticles:       0,
		MaxArticlesOneDay: 0,
	}
}

// RequiredTier looks up a capability's tier. Unknown capabilities fall back
// to TierOwner, the most restrictive assignment.
func (p Policy) RequiredTier(cap Capability) Tier {
	if tier, ok := p.Capabilities[cap]; ok {
		return tier
	}
	return TierOwner
}
