package directory

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/greenmission/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug length bounds for directory URLs
const (
	SlugMinLength = 3
	SlugMaxLength = 100
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ErrInvalidSlug rejects slugs that fail the directory slug format
var ErrInvalidSlug = shared.NewDomainError("INVALID_SLUG",
	"Slug must be 3-100 lowercase alphanumeric characters separated by single hyphens")

// asciiFolder decomposes accented characters and strips the combining marks,
// so "Café Verde" normalizes to "cafe-verde" instead of losing letters.
var asciiFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// IsValidSlug reports whether s satisfies the slug format and length bounds.
func IsValidSlug(s string) bool {
	if len(s) < SlugMinLength || len(s) > SlugMaxLength {
		return false
	}
	return slugPattern.MatchString(s)
}

// Slugify converts a business name into a URL-safe slug candidate:
// lowercase, ASCII-folded, everything outside [a-z0-9 -] stripped, runs of
// whitespace and hyphens collapsed to single hyphens, leading/trailing
// hyphens trimmed. The result may be shorter than SlugMinLength for names
// that carry no usable characters; callers use FallbackSlug in that case.
func Slugify(name string) string {
	folded, _, err := transform.String(asciiFolder, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '-', r == '_':
			b.WriteByte('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")

	if len(slug) > SlugMaxLength {
		slug = strings.TrimRight(slug[:SlugMaxLength], "-")
	}

	return slug
}

// FallbackSlug builds a deterministic placeholder slug for business names
// that normalize below the minimum length. It embeds the business ID when
// one is available, otherwise the current timestamp.
func FallbackSlug(businessID string, clock shared.Clock) string {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if businessID != "" {
		return "business-" + Slugify(businessID)
	}
	return fmt.Sprintf("business-%d", clock.Now().UnixMilli())
}
