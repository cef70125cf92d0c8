// Package naming renders destination keys for thumbnail variants from
// a pattern template.
package naming

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultPattern is used when a thumbnail spec does not declare its own
// naming pattern.
const DefaultPattern = "/{image_stem}_{thumb_name}"

const (
	tokenImageStem = "{image_stem}"
	tokenThumbName = "{thumb_name}"
)

var ErrEmptyPattern = errors.New("naming pattern rendered to an empty path")

var separators = regexp.MustCompile(`[/\\]+`)

// Render substitutes {image_stem} and {thumb_name} in pattern and appends
// ext (with its leading dot) verbatim. Unknown tokens are left untouched
// on purpose so patterns can carry literal braces. The result always
// starts with exactly one slash and never ends with one, so joining it
// with a destination prefix cannot double separators.
func Render(pattern, imageStem, thumbName, ext string) (string, error) {
	rendered := strings.ReplaceAll(pattern, tokenImageStem, imageStem)
	rendered = strings.ReplaceAll(rendered, tokenThumbName, thumbName)
	rendered = normalize(rendered)

	if rendered == "" {
		return "", ErrEmptyPattern
	}

	return "/" + rendered + ext, nil
}

// Join prepends a caller-supplied destination prefix to a rendered key.
// An empty prefix leaves the key untouched.
func Join(prefix, key string) string {
	prefix = strings.TrimRight(prefix, "/\\")
	if prefix == "" {
		return key
	}

	return prefix + key
}

// normalize collapses repeated separators and strips the leading and
// trailing ones.
func normalize(path string) string {
	path = separators.ReplaceAllString(path, "/")
	return strings.Trim(path, "/")
}
