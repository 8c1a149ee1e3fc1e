package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSpaces   = regexp.MustCompile(`[\s_]+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// slugify lowercases the name and reduces it to dashed words.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugCollapse.ReplaceAllString(s, "-")
	return s
}

// productSlug appends a base-36 timestamp fragment so two products with the
// same name never collide, without a retry loop on the unique index.
func productSlug(name string) string {
	return slugify(name) + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
