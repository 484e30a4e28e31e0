package validate

import (
	"fmt"
	"net/url"
	"regexp"
)

// Showcase field limits — single source of truth for catalog loading and the API.
const (
	MaxTitleLength        = 500
	MaxCarouselNameLength = 64
	MaxURLLength          = 2048
	MaxCarouselVideos     = 50
)

var carouselNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string { return checkLen(s, MaxTitleLength, "title") }

func CarouselName(s string) string {
	if s == "" {
		return "carousel name is required"
	}
	if msg := checkLen(s, MaxCarouselNameLength, "carousel name"); msg != "" {
		return msg
	}
	if !carouselNamePattern.MatchString(s) {
		return "carousel name may only contain lowercase letters, digits, '-' and '_'"
	}
	return ""
}

// MediaURL accepts absolute http(s) URLs and site-relative paths.
func MediaURL(s string, field string) string {
	if s == "" {
		return field + " is required"
	}
	if msg := checkLen(s, MaxURLLength, field); msg != "" {
		return msg
	}
	u, err := url.Parse(s)
	if err != nil {
		return field + " is not a valid URL"
	}
	if u.IsAbs() && u.Scheme != "http" && u.Scheme != "https" {
		return field + " must use http or https"
	}
	if !u.IsAbs() && (len(s) == 0 || s[0] != '/') {
		return field + " must be absolute or start with /"
	}
	return ""
}

func CarouselSize(n int) string {
	if n > MaxCarouselVideos {
		return fmt.Sprintf("carousel must have %d videos or fewer", MaxCarouselVideos)
	}
	return ""
}

// FieldLimits returns a map of field names to max lengths for the /api/limits endpoint.
func FieldLimits() map[string]int {
	return map[string]int{
		"title":          MaxTitleLength,
		"carouselName":   MaxCarouselNameLength,
		"url":            MaxURLLength,
		"carouselVideos": MaxCarouselVideos,
	}
}
