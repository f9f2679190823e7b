package directory

import "regexp"

// BusinessIDPrefix is the fixed prefix of every Green Mission business ID.
const BusinessIDPrefix = "GM"

var businessIDPattern = regexp.MustCompile(`^GM-\d{8}-\d{4}$`)

// BusinessIdentifier is the pair of identifiers assigned to a business
// record at creation time. Both values are immutable once assigned.
type BusinessIdentifier struct {
	// BusinessID has the form GM-YYYYMMDD-NNNN: the UTC creation date plus
	// a zero-padded sequence unique within that day.
	BusinessID string `json:"business_id"`
	// Slug is the globally unique, URL-safe directory identifier.
	Slug string `json:"slug"`
}

// IsValidBusinessID reports whether id matches the GM-YYYYMMDD-NNNN format.
func IsValidBusinessID(id string) bool {
	return businessIDPattern.MatchString(id)
}
