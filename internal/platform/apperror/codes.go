package apperror

// ErrorCode is the general system-level error category.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// BusinessCode is the specific business reason behind an error.
type BusinessCode string

const (
	BusinessCodeGeneral BusinessCode = "GENERAL"

	// Authorization
	BusinessCodePermissionDenied  BusinessCode = "PERMISSION_DENIED"
	BusinessCodeInvalidPermission BusinessCode = "INVALID_PERMISSION"
	BusinessCodeGrantDisabled     BusinessCode = "GRANT_DISABLED"
	BusinessCodeInsufficientLevel BusinessCode = "INSUFFICIENT_LEVEL"
	BusinessCodeInsufficientTier  BusinessCode = "INSUFFICIENT_TIER"

	// Roles
	BusinessCodeRoleNotFound   BusinessCode = "ROLE_NOT_FOUND"
	BusinessCodeRoleNameExists BusinessCode = "ROLE_NAME_EXISTS"
	BusinessCodeNoDefaultRole  BusinessCode = "NO_DEFAULT_ROLE"

	// Sections
	BusinessCodeSectionNotFound   BusinessCode = "SECTION_NOT_FOUND"
	BusinessCodeSectionNameExists BusinessCode = "SECTION_NAME_EXISTS"

	// Content
	BusinessCodeArticleNotFound  BusinessCode = "ARTICLE_NOT_FOUND"
	BusinessCodeCommentNotFound  BusinessCode = "COMMENT_NOT_FOUND"
	BusinessCodePhotoNotFound    BusinessCode = "PHOTO_NOT_FOUND"
	BusinessCodeAlbumNotFound    BusinessCode = "ALBUM_NOT_FOUND"
	BusinessCodeInvalidStatus    BusinessCode = "INVALID_STATUS"
	BusinessCodeSlugAlreadyExists BusinessCode = "SLUG_ALREADY_EXISTS"
	BusinessCodeInvalidFormat    BusinessCode = "INVALID_FORMAT"

	// Actors
	BusinessCodeActorNotFound BusinessCode = "ACTOR_NOT_FOUND"
)
