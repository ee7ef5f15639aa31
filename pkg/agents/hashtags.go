package agents

import "regexp"

var hashtagPattern = regexp.MustCompile(`#[0-9A-Za-z_]+`)

// ExtractHashtags pulls hashtags out of generated content, without the
// leading '#'. Content with no hashtags yields an empty slice.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1:])
	}
	return tags
}
