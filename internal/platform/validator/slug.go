package validator

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrSlugEmpty         = errors.New("slug cannot be empty")
	ErrSlugTooLong       = errors.New("slug is too long")
	ErrInvalidSlugFormat = errors.New("slug must contain only lowercase letters, numbers, and hyphens")
)

var (
	slugAllowed  = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugReject   = regexp.MustCompile(`[^a-z0-9-]+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// ValidateSlugFormat reports whether a slug is non-empty, within maxLength,
// and restricted to the allowed character set.
func ValidateSlugFormat(slug string, maxLength int) error {
	switch {
	case slug == "":
		return ErrSlugEmpty
	case len(slug) > maxLength:
		return ErrSlugTooLong
	case !slugAllowed.MatchString(slug):
		return ErrInvalidSlugFormat
	}
	return nil
}

// GenerateSlug derives a URL slug from free text: lowercase, disallowed runs
// become single hyphens, and the result fits maxLength without a trailing
// hyphen.
func GenerateSlug(text string, maxLength int) string {
	slug := strings.ToLower(text)
	slug = slugReject.ReplaceAllString(slug, "-")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxLength {
		slug = strings.TrimRight(slug[:maxLength], "-")
	}
	return slug
}

// MakeSlugUniqueWithMaxLength appends a numeric collision suffix, shortening
// the base so the combined slug still fits maxLength. A suffix of zero or
// less leaves the base untouched apart from truncation.
func MakeSlugUniqueWithMaxLength(base string, suffix, maxLength int) string {
	if suffix <= 0 {
		if len(base) > maxLength {
			return base[:maxLength]
		}
		return base
	}

	tail := "-" + strconv.Itoa(suffix)
	if room := maxLength - len(tail); len(base) > room && room > 0 {
		base = strings.TrimRight(base[:room], "-")
	}
	return base + tail
}
