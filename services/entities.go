package services

import (
	"regexp"
	"strings"

	"chirp/models"
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
	urlPattern     = regexp.MustCompile(`https?://\S+`)
)

// ExtractEntities lists the hashtags and mentions (lower-cased, without the
// sigil) and the URLs found in content.
func ExtractEntities(content string) models.Entities {
	e := models.Entities{Hashtags: []string{}, Mentions: []string{}, URLs: []string{}}
	if content == "" {
		return e
	}
	for _, m := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		e.Hashtags = append(e.Hashtags, strings.ToLower(m[1]))
	}
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		e.Mentions = append(e.Mentions, strings.ToLower(m[1]))
	}
	e.URLs = append(e.URLs, urlPattern.FindAllString(content, -1)...)
	return e
}
