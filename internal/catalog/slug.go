package catalog

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// idDisallowed matches anything that is not a lowercase letter, digit, or hyphen.
	idDisallowed    = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// GenerateSlug derives a category slug from its title.
// Example: "PRV SAFETY VALVES" -> "prv-safety-valves"
func GenerateSlug(title string) string {
	s := strings.ToLower(title)
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.NewReplacer("(", "", ")", "").Replace(s)
	return s
}

// GenerateProductID derives a product id from its name.
// Example: "Pilot Operated (Piston/Type)" -> "pilot-operated-piston-type"
func GenerateProductID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = idDisallowed.ReplaceAllString(s, "")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsSlug reports whether s is a canonical URL-safe identifier.
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}
